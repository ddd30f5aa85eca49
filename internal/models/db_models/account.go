package db_models

// Account mirrors the coin balance of an identity-platform account.
// Profile data lives on the platform; only the counter is kept here.
type Account struct {
	ID        string `gorm:"size:128;primaryKey"`
	Coins     int64  `gorm:"not null;default:0"`
	UpdatedAt int64  `gorm:"autoUpdateTime"`
}
