package indexer

import "time"

// EventRecord is one committed contract log line.
type EventRecord struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	TxId      string `gorm:"size:64;index"`
	Height    uint64 `gorm:"index"`
	Position  int
	Contract  string `gorm:"size:128;index"`
	Tag       string `gorm:"size:16;index"`
	Line      string `gorm:"type:text"`
	CreatedAt time.Time
}

func (EventRecord) TableName() string { return "events" }

// GalleryRecord follows the ng (created) and jg (joined) events.
type GalleryRecord struct {
	ID          string `gorm:"type:char(36);primaryKey"`
	GalleryID   uint64 `gorm:"uniqueIndex"`
	Owner       string `gorm:"size:128;index"`
	Name        string `gorm:"size:512"`
	Price       string `gorm:"size:80"`
	VotingStart int64
	VotingEnd   int64
	Attendees   uint64
	TxId        string `gorm:"size:64"`
	UpdatedAt   time.Time
}

func (GalleryRecord) TableName() string { return "galleries" }

// CastRecord is the latest state of a cast from cs (staked) and cu (updated) events.
type CastRecord struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	GalleryID uint64 `gorm:"uniqueIndex:idx_cast"`
	Nft       uint64 `gorm:"uniqueIndex:idx_cast"`
	CastID    uint64 `gorm:"uniqueIndex:idx_cast"`
	Voter     string `gorm:"size:128;index"`
	Bid       string `gorm:"size:80"`
	// BoardRank is the leaderboard slot right after the last stake or update.
	BoardRank int
	Height    uint64
	UpdatedAt time.Time
}

func (CastRecord) TableName() string { return "casts" }

var migrateModels = []any{
	&EventRecord{},
	&GalleryRecord{},
	&CastRecord{},
}
