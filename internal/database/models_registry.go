package database

import "amateurs/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Parents come before the tables that reference them.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.PostStatistics{},
		&models.Comment{},
		&models.Bookmark{},
		&models.Like{},
		&models.Report{},
		&models.PostImage{},
		&models.PopularPost{},
		&models.RecommendedPost{},
		&models.MarketItem{},
		&models.GatheringPost{},
		&models.MatchingPost{},
		&models.Project{},
		&models.PostEmbedding{},
	}
}
