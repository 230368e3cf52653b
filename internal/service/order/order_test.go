package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/min_commerce/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// single connection, so the in-memory db is shared and concurrent
	// transactions serialize
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Product{}, &models.Order{}, &models.OrderItem{},
	))
	return db
}

func seedProducts(t *testing.T, db *gorm.DB) (models.Product, models.Product) {
	t.Helper()
	a := models.Product{Slug: "product-a", Name: "Product A", Description: "a", Price: 10.00, Stock: 5}
	b := models.Product{Slug: "product-b", Name: "Product B", Description: "b", Price: 5.00, Stock: 1}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)
	return a, b
}

func stockOf(t *testing.T, db *gorm.DB, id uint) uint {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Stock
}

func TestPlaceOrder(t *testing.T) {
	db := initTestDB(t)
	a, b := seedProducts(t, db)
	svc := &Service{DB: db}

	created, err := svc.Place(context.Background(), 1, PlaceRequest{
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		Items: []Line{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: b.ID, Quantity: 1},
		},
		Total: 25.00,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.InDelta(t, 25.00, created.Total, 1e-9)
	require.Equal(t, models.OrderStatusPending, created.Status)
	require.Len(t, created.Items, 2)

	// snapshot prices captured at purchase time
	for _, item := range created.Items {
		switch item.ProductID {
		case a.ID:
			require.InDelta(t, 10.00, item.Price, 1e-9)
			require.Equal(t, uint(2), item.Quantity)
			require.Equal(t, "Product A", item.Product.Name)
		case b.ID:
			require.InDelta(t, 5.00, item.Price, 1e-9)
			require.Equal(t, uint(1), item.Quantity)
		default:
			t.Fatalf("unexpected product %d", item.ProductID)
		}
	}

	require.Equal(t, uint(3), stockOf(t, db, a.ID))
	require.Equal(t, uint(0), stockOf(t, db, b.ID))
}

func TestPlaceOrderSnapshotPriceSurvivesCatalogChange(t *testing.T) {
	db := initTestDB(t)
	a, _ := seedProducts(t, db)
	svc := &Service{DB: db}

	created, err := svc.Place(context.Background(), 1, PlaceRequest{
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Items:         []Line{{ProductID: a.ID, Quantity: 1}},
		Total:         10.00,
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", a.ID).Update("price", 99.99).Error)

	orders, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, created.ID, orders[0].ID)
	require.InDelta(t, 10.00, orders[0].Items[0].Price, 1e-9)
}

func TestPlaceOrderInvalidRequest(t *testing.T) {
	db := initTestDB(t)
	a, _ := seedProducts(t, db)
	svc := &Service{DB: db}
	ctx := context.Background()

	cases := []PlaceRequest{
		{CustomerEmail: "x@y.z", Items: []Line{{ProductID: a.ID, Quantity: 1}}, Total: 10},
		{CustomerName: "x", Items: []Line{{ProductID: a.ID, Quantity: 1}}, Total: 10},
		{CustomerName: "x", CustomerEmail: "x@y.z", Total: 0},
		{CustomerName: "x", CustomerEmail: "x@y.z", Items: []Line{{ProductID: a.ID, Quantity: 0}}, Total: 0},
		{CustomerName: "x", CustomerEmail: "x@y.z", Items: []Line{{Quantity: 1}}, Total: 10},
	}
	for _, req := range cases {
		_, err := svc.Place(ctx, 1, req)
		require.ErrorIs(t, err, ErrInvalidRequest)
	}

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestPlaceOrderProductNotFound(t *testing.T) {
	db := initTestDB(t)
	a, _ := seedProducts(t, db)
	svc := &Service{DB: db}

	_, err := svc.Place(context.Background(), 1, PlaceRequest{
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Items: []Line{
			{ProductID: a.ID, Quantity: 1},
			{ProductID: 9999, Quantity: 1},
		},
		Total: 10.00,
	})
	require.ErrorIs(t, err, ErrProductNotFound)
	require.Contains(t, err.Error(), "9999")

	require.Equal(t, uint(5), stockOf(t, db, a.ID))
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	db := initTestDB(t)
	_, b := seedProducts(t, db)
	svc := &Service{DB: db}

	_, err := svc.Place(context.Background(), 1, PlaceRequest{
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Items:         []Line{{ProductID: b.ID, Quantity: 2}},
		Total:         10.00,
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Contains(t, err.Error(), "Product B")

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
	require.Equal(t, uint(1), stockOf(t, db, b.ID))
}

func TestPlaceOrderTotalMismatch(t *testing.T) {
	db := initTestDB(t)
	a, _ := seedProducts(t, db)
	svc := &Service{DB: db}
	ctx := context.Background()

	_, err := svc.Place(ctx, 1, PlaceRequest{
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Items:         []Line{{ProductID: a.ID, Quantity: 2}},
		Total:         19.00,
	})
	require.ErrorIs(t, err, ErrTotalMismatch)
	require.Equal(t, uint(5), stockOf(t, db, a.ID))

	// within the rounding tolerance the order goes through
	_, err = svc.Place(ctx, 1, PlaceRequest{
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Items:         []Line{{ProductID: a.ID, Quantity: 2}},
		Total:         20.005,
	})
	require.NoError(t, err)
}

func TestConcurrentPlacementsSingleUnit(t *testing.T) {
	db := initTestDB(t)
	_, b := seedProducts(t, db)
	svc := &Service{DB: db}

	req := PlaceRequest{
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Items:         []Line{{ProductID: b.ID, Quantity: 1}},
		Total:         5.00,
	}

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Place(context.Background(), uint(i+1), req)
		}(i)
	}
	wg.Wait()

	var succeeded, stockedOut int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			require.ErrorIs(t, err, ErrInsufficientStock)
			stockedOut++
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, stockedOut)

	require.Equal(t, uint(0), stockOf(t, db, b.ID))
	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestListNewestFirst(t *testing.T) {
	db := initTestDB(t)
	a, _ := seedProducts(t, db)
	svc := &Service{DB: db}
	ctx := context.Background()

	first, err := svc.Place(ctx, 1, PlaceRequest{
		CustomerName: "Ada", CustomerEmail: "ada@example.com",
		Items: []Line{{ProductID: a.ID, Quantity: 1}}, Total: 10.00,
	})
	require.NoError(t, err)
	second, err := svc.Place(ctx, 2, PlaceRequest{
		CustomerName: "Grace", CustomerEmail: "grace@example.com",
		Items: []Line{{ProductID: a.ID, Quantity: 1}}, Total: 10.00,
	})
	require.NoError(t, err)

	// force distinct timestamps, sqlite stores them as given
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", second.ID).
		Update("created_at", first.CreatedAt.Add(time.Second)).Error)

	orders, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, second.ID, orders[0].ID)
	require.NotEmpty(t, orders[0].Items)
	require.Equal(t, "Product A", orders[0].Items[0].Product.Name)

	mine, err := svc.ListForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, first.ID, mine[0].ID)
}
