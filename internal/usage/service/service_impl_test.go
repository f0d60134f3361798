package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	boxrepository "github.com/boxtrack/boxtrack/internal/boxtype/repository"
	usagedomain "github.com/boxtrack/boxtrack/internal/usage/domain"
	usagerepository "github.com/boxtrack/boxtrack/internal/usage/repository"
	"github.com/boxtrack/boxtrack/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func setupUsageService(t *testing.T, node *snowflake.Node) (usagedomain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	prepareSchema(t, db)

	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Repo:    usagerepository.Provide(),
		BoxRepo: boxrepository.Provide(),
	})

	return svc, db
}

func prepareSchema(t *testing.T, db *gorm.DB) {
	t.Helper()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS box_types (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 0,
			cost NUMERIC NOT NULL DEFAULT 0,
			min_threshold INTEGER NOT NULL DEFAULT 10,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS usage_events (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			box_type_id INTEGER NOT NULL,
			box_name TEXT NOT NULL,
			quantity_used INTEGER NOT NULL,
			date TEXT NOT NULL,
			metadata TEXT,
			created_at DATETIME NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("prepare schema: %v", err)
		}
	}
}

func seedBox(t *testing.T, db *gorm.DB, node *snowflake.Node, userID snowflake.ID, name string, quantity int64) snowflake.ID {
	t.Helper()

	id := node.Generate()
	now := time.Now().UTC()
	if err := db.Exec(
		`INSERT INTO box_types (id, user_id, name, quantity, cost, min_threshold, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, 10, ?, ?)`,
		id, userID, name, quantity, now, now,
	).Error; err != nil {
		t.Fatalf("seed box: %v", err)
	}
	return id
}

func boxQuantity(t *testing.T, db *gorm.DB, id snowflake.ID) int64 {
	t.Helper()

	var quantity int64
	if err := db.Raw(`SELECT quantity FROM box_types WHERE id = ?`, id).Scan(&quantity).Error; err != nil {
		t.Fatalf("read quantity: %v", err)
	}
	return quantity
}

func TestRecordDecrementsStock(t *testing.T) {
	node := mustNode(t)
	svc, db := setupUsageService(t, node)
	userID := node.Generate()
	boxID := seedBox(t, db, node, userID, "Small Box", 70)

	result, err := svc.Record(context.Background(), userID, usagedomain.RecordRequest{
		Items: []usagedomain.RecordItem{{BoxTypeID: boxID.String(), Quantity: 30}},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if result.Succeeded != 1 || result.Failed != 0 {
		t.Fatalf("expected 1 success, got %+v", result)
	}
	if event := result.Items[0].Event; event == nil || event.BoxName != "Small Box" {
		t.Fatalf("expected box name snapshot, got %+v", result.Items[0].Event)
	}
	if got := boxQuantity(t, db, boxID); got != 40 {
		t.Fatalf("expected quantity 40, got %d", got)
	}
}

func TestRecordInsufficientStockLeavesQuantity(t *testing.T) {
	node := mustNode(t)
	svc, db := setupUsageService(t, node)
	userID := node.Generate()
	boxID := seedBox(t, db, node, userID, "Small Box", 70)

	result, err := svc.Record(context.Background(), userID, usagedomain.RecordRequest{
		Items: []usagedomain.RecordItem{{BoxTypeID: boxID.String(), Quantity: 150}},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if result.Failed != 1 {
		t.Fatalf("expected failure, got %+v", result)
	}
	if code := result.Items[0].Error; code != usagedomain.ErrInsufficientStock.Error() {
		t.Fatalf("expected insufficient_stock, got %q", code)
	}
	if got := boxQuantity(t, db, boxID); got != 70 {
		t.Fatalf("expected quantity unchanged at 70, got %d", got)
	}
}

func TestRecordBatchItemsIndependent(t *testing.T) {
	node := mustNode(t)
	svc, db := setupUsageService(t, node)
	userID := node.Generate()
	boxID := seedBox(t, db, node, userID, "Small Box", 20)

	result, err := svc.Record(context.Background(), userID, usagedomain.RecordRequest{
		Items: []usagedomain.RecordItem{
			{BoxTypeID: boxID.String(), Quantity: 15},
			{BoxTypeID: boxID.String(), Quantity: 15},
			{BoxTypeID: boxID.String(), Quantity: 0},
			{BoxTypeID: boxID.String(), Quantity: 5},
		},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if result.Succeeded != 2 || result.Failed != 2 {
		t.Fatalf("expected 2 success / 2 failure, got %+v", result)
	}
	if code := result.Items[1].Error; code != usagedomain.ErrInsufficientStock.Error() {
		t.Fatalf("expected insufficient_stock on item 1, got %q", code)
	}
	if code := result.Items[2].Error; code != usagedomain.ErrInvalidQuantity.Error() {
		t.Fatalf("expected invalid_quantity on item 2, got %q", code)
	}
	if got := boxQuantity(t, db, boxID); got != 0 {
		t.Fatalf("expected quantity 0, got %d", got)
	}
}

func TestRecordUnknownBox(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupUsageService(t, node)
	userID := node.Generate()

	result, err := svc.Record(context.Background(), userID, usagedomain.RecordRequest{
		Items: []usagedomain.RecordItem{{BoxTypeID: node.Generate().String(), Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if code := result.Items[0].Error; code != usagedomain.ErrBoxTypeNotFound.Error() {
		t.Fatalf("expected box_type_not_found, got %q", code)
	}
}

func TestRecordEmptyBatch(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupUsageService(t, node)

	if _, err := svc.Record(context.Background(), node.Generate(), usagedomain.RecordRequest{}); !errors.Is(err, usagedomain.ErrEmptyBatch) {
		t.Fatalf("expected empty_batch, got %v", err)
	}
}

func TestRecordConcurrentNeverOversells(t *testing.T) {
	node := mustNode(t)
	svc, db := setupUsageService(t, node)
	userID := node.Generate()
	boxID := seedBox(t, db, node, userID, "Contested Box", 10)

	var wg sync.WaitGroup
	results := make(chan *usagedomain.RecordResult, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Record(context.Background(), userID, usagedomain.RecordRequest{
				Items: []usagedomain.RecordItem{{BoxTypeID: boxID.String(), Quantity: 1}},
			})
			if err != nil {
				t.Errorf("record: %v", err)
				return
			}
			results <- result
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for result := range results {
		succeeded += result.Succeeded
	}
	if succeeded != 10 {
		t.Fatalf("expected exactly 10 successful records, got %d", succeeded)
	}
	if got := boxQuantity(t, db, boxID); got != 0 {
		t.Fatalf("expected quantity 0, got %d", got)
	}
}

func TestListWindowAndPagination(t *testing.T) {
	node := mustNode(t)
	svc, db := setupUsageService(t, node)
	userID := node.Generate()
	boxID := seedBox(t, db, node, userID, "Window Box", 0)

	now := time.Now().UTC()
	insert := func(at time.Time) {
		if err := db.Exec(
			`INSERT INTO usage_events (id, user_id, box_type_id, box_name, quantity_used, date, created_at)
			 VALUES (?, ?, ?, ?, 1, ?, ?)`,
			node.Generate(), userID, boxID, "Window Box", at.Format(usagedomain.DateLayout), at,
		).Error; err != nil {
			t.Fatalf("seed event: %v", err)
		}
	}

	for i := 0; i < 5; i++ {
		insert(now.Add(-time.Duration(i) * time.Hour))
	}
	insert(now.AddDate(0, 0, -40)) // outside the 30 day window

	page1, err := svc.List(context.Background(), userID, usagedomain.ListRequest{
		Pagination: pagination.Pagination{PageSize: 3},
	})
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if len(page1.Events) != 3 || !page1.PageInfo.HasMore {
		t.Fatalf("expected 3 events with more pages, got %d (has_more=%v)", len(page1.Events), page1.PageInfo.HasMore)
	}

	page2, err := svc.List(context.Background(), userID, usagedomain.ListRequest{
		Pagination: pagination.Pagination{PageSize: 3, PageToken: page1.PageInfo.NextPageToken},
	})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page2.Events) != 2 || page2.PageInfo.HasMore {
		t.Fatalf("expected final 2 events, got %d (has_more=%v)", len(page2.Events), page2.PageInfo.HasMore)
	}

	for i := 1; i < len(page1.Events); i++ {
		if page1.Events[i-1].CreatedAt.Before(page1.Events[i].CreatedAt) {
			t.Fatalf("expected newest-first ordering")
		}
	}
}

func TestListRejectsBadInput(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupUsageService(t, node)
	userID := node.Generate()

	if _, err := svc.List(context.Background(), userID, usagedomain.ListRequest{Days: -1}); !errors.Is(err, usagedomain.ErrInvalidDays) {
		t.Fatalf("expected invalid_days, got %v", err)
	}
	if _, err := svc.List(context.Background(), userID, usagedomain.ListRequest{
		Pagination: pagination.Pagination{PageToken: "not-base64!!"},
	}); !errors.Is(err, usagedomain.ErrInvalidPageToken) {
		t.Fatalf("expected invalid_page_token, got %v", err)
	}
}
