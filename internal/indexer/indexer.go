// Package indexer keeps a queryable copy of the committed contract events in a SQL
// database (sqlite by default, mysql when shared).
package indexer

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"okinoko_gallery/contract"
	"okinoko_gallery/internal/event"
	"okinoko_gallery/sdk"
)

var ErrUnknownDriver = errors.New("unknown indexer driver")

type Indexer struct {
	db     *gorm.DB
	logger *zap.Logger

	mu    sync.Mutex
	bus   *event.EventBus
	subId event.EventSubscriberId
	wg    sync.WaitGroup
}

// Open connects to driver ("sqlite" or "mysql") and migrates the schema.
func Open(driver, dsn string, logger *zap.Logger) (*Indexer, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = gormmysql.Open(dsn)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownDriver, driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s index: %w", driver, err)
	}
	return New(db, logger)
}

// New wraps an open database.
func New(db *gorm.DB, logger *zap.Logger) (*Indexer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, model := range migrateModels {
		if err := db.AutoMigrate(model); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return &Indexer{db: db, logger: logger}, nil
}

// Attach starts consuming committed logs from bus. Only one bus at a time.
func (i *Indexer) Attach(bus *event.EventBus) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.bus != nil {
		return
	}
	subId, ch := bus.Subscribe(event.LogEventType)
	i.bus = bus
	i.subId = subId
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		for evt := range ch {
			le, ok := evt.Data.(event.LogEvent)
			if !ok {
				continue
			}
			if err := i.Handle(le); err != nil {
				i.logger.Error("index event failed",
					zap.String("tx", le.TxId),
					zap.String("line", le.Line),
					zap.Error(err),
				)
			}
		}
	}()
}

// Detach stops consuming once the already delivered events are stored.
func (i *Indexer) Detach() {
	i.mu.Lock()
	bus := i.bus
	i.bus = nil
	i.mu.Unlock()
	if bus != nil {
		bus.Unsubscribe(event.LogEventType, i.subId)
	}
	i.wg.Wait()
}

// Close detaches and closes the database.
func (i *Indexer) Close() error {
	i.Detach()
	sqlDB, err := i.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Handle stores one log line and updates the projections in a single transaction.
func (i *Indexer) Handle(le event.LogEvent) error {
	ev, ok := contract.ParseEvent(le.Line)
	if !ok {
		return nil
	}
	return i.db.Transaction(func(tx *gorm.DB) error {
		rec := &EventRecord{
			ID:       uuid.NewString(),
			TxId:     le.TxId,
			Height:   le.Height,
			Position: le.Index,
			Contract: le.Contract,
			Tag:      ev.Tag,
			Line:     le.Line,
		}
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		switch ev.Tag {
		case "ng":
			return galleryCreated(tx, le, ev)
		case "jg":
			return galleryJoined(tx, ev)
		case "cs", "cu":
			return castChanged(tx, le, ev)
		}
		return nil
	})
}

func galleryCreated(tx *gorm.DB, le event.LogEvent, ev contract.Event) error {
	id, err := strconv.ParseUint(ev.Fields["id"], 10, 64)
	if err != nil {
		return fmt.Errorf("ng without id: %q", le.Line)
	}
	start, _ := strconv.ParseInt(ev.Fields["start"], 10, 64)
	end, _ := strconv.ParseInt(ev.Fields["end"], 10, 64)
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&GalleryRecord{
		ID:          uuid.NewString(),
		GalleryID:   id,
		Owner:       ev.Fields["by"],
		Name:        ev.Fields["name"],
		Price:       ev.Fields["price"],
		VotingStart: start,
		VotingEnd:   end,
		TxId:        le.TxId,
	}).Error
}

func galleryJoined(tx *gorm.DB, ev contract.Event) error {
	id, err := strconv.ParseUint(ev.Fields["id"], 10, 64)
	if err != nil {
		return nil
	}
	return tx.Model(&GalleryRecord{}).
		Where("gallery_id = ?", id).
		UpdateColumn("attendees", gorm.Expr("attendees + ?", 1)).Error
}

func castChanged(tx *gorm.DB, le event.LogEvent, ev contract.Event) error {
	var nums [3]uint64
	for n, key := range []string{"g", "nft", "cast"} {
		v, err := strconv.ParseUint(ev.Fields[key], 10, 64)
		if err != nil {
			return fmt.Errorf("%s without %s: %q", ev.Tag, key, le.Line)
		}
		nums[n] = v
	}
	rank, _ := strconv.Atoi(ev.Fields["rank"])
	rec := &CastRecord{
		ID:        uuid.NewString(),
		GalleryID: nums[0],
		Nft:       nums[1],
		CastID:    nums[2],
		Voter:     ev.Fields["by"],
		Bid:       ev.Fields["bid"],
		BoardRank: rank,
		Height:    le.Height,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "gallery_id"}, {Name: "nft"}, {Name: "cast_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"bid", "board_rank", "height", "updated_at"}),
	}).Create(rec).Error
}

// Events returns the newest events, all tags when tag is empty.
func (i *Indexer) Events(tag string, limit int) ([]EventRecord, error) {
	q := i.db.Order("height desc").Order("position desc")
	if tag != "" {
		q = q.Where("tag = ?", tag)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []EventRecord
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Galleries lists the indexed galleries by id.
func (i *Indexer) Galleries() ([]GalleryRecord, error) {
	var out []GalleryRecord
	if err := i.db.Order("gallery_id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Casts returns every cast on one nft, highest bid first, ties by cast id.
func (i *Indexer) Casts(g, nft uint64) ([]CastRecord, error) {
	var out []CastRecord
	if err := i.db.Where("gallery_id = ? AND nft = ?", g, nft).Order("cast_id").Find(&out).Error; err != nil {
		return nil, err
	}
	// bids are 256 bit decimals, text order would be wrong
	bids := make([]*sdk.Amount, len(out))
	for n := range out {
		v, err := sdk.ParseAmount(out[n].Bid)
		if err != nil {
			v = sdk.NewAmount(0)
		}
		bids[n] = v
	}
	idx := make([]int, len(out))
	for n := range idx {
		idx[n] = n
	}
	sort.SliceStable(idx, func(a, b int) bool { return bids[idx[a]].Gt(bids[idx[b]]) })
	sorted := make([]CastRecord, len(out))
	for n, j := range idx {
		sorted[n] = out[j]
	}
	return sorted, nil
}
