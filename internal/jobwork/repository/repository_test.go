package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/Sudarsan9786/nool-erp/internal/jobwork/entity"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/repository"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDBSequencer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	seq := repository.DBSequencer{}

	for want := int64(1); want <= 3; want++ {
		got, err := seq.Next(ctx, db, "job_order")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	other, err := seq.Next(ctx, db, "challan")
	require.NoError(t, err)
	assert.EqualValues(t, 1, other)
}

func TestDBSequencerRollbackReturnsNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	seq := repository.DBSequencer{}

	_, err := seq.Next(ctx, db, "job_order")
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		n, err := seq.Next(ctx, tx, "job_order")
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
		return repository.ErrStockConflict
	})
	require.ErrorIs(t, err, repository.ErrStockConflict)

	n, err := seq.Next(ctx, db, "job_order")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestRedisSequencer(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	seq := repository.NewRedisSequencer(client)
	ctx := context.Background()
	for want := int64(1); want <= 3; want++ {
		got, err := seq.Next(ctx, nil, "job_order")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	val, err := mr.Get("nool:seq:job_order")
	require.NoError(t, err)
	assert.Equal(t, "3", val)

	mr.Close()
	_, err = seq.Next(ctx, nil, "job_order")
	assert.Error(t, err)
}

func TestIssueAndReturnMaterial(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := repository.NewMaterialRepository(db)
	m := testutil.SeedMaterial(t, db, "Cotton Yarn", entity.MaterialTypeYarn, 100, entity.UnitKg)

	assert.ErrorIs(t, repo.IssueToVendor(ctx, m.ID, 150, "v1", "jo1"), repository.ErrStockConflict)

	require.NoError(t, repo.IssueToVendor(ctx, m.ID, 30, "v1", "jo1"))
	got, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.InDelta(t, 70, got.Quantity, 0.0001)
	assert.Equal(t, entity.LocationVendor, got.CurrentLocation)
	require.NotNil(t, got.VendorID)
	assert.Equal(t, "v1", *got.VendorID)

	// Not in the warehouse any more.
	assert.ErrorIs(t, repo.IssueToVendor(ctx, m.ID, 1, "v2", "jo2"), repository.ErrStockConflict)

	require.NoError(t, repo.ReturnToWarehouse(ctx, m.ID))
	got, err = repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LocationWarehouse, got.CurrentLocation)
	assert.Nil(t, got.VendorID)
	assert.InDelta(t, 70, got.Quantity, 0.0001)

	assert.ErrorIs(t, repo.ReturnToWarehouse(ctx, "missing"), repository.ErrNotFound)
}

func TestJobOrderRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repos := repository.NewRepositories(db)
	vendor := testutil.SeedVendor(t, db, "ABC Dyeing Works", "", entity.JobWorkDyeing)

	now := time.Now()
	for i, status := range []string{entity.StatusSent, entity.StatusSent, entity.StatusCompleted} {
		o := &entity.JobOrder{
			ID:             "jo-" + string(rune('a'+i)),
			JobOrderNumber: "JO-202401-000" + string(rune('1'+i)),
			VendorID:       vendor.ID,
			JobWorkType:    entity.JobWorkDyeing,
			Status:         status,
			ChallanDate:    now,
			MaterialsIssued: []entity.JobOrderIssuedMaterial{
				{SortOrder: 0, MaterialID: "m1", Quantity: 10, Unit: entity.UnitKg},
			},
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
			UpdatedAt: now,
		}
		require.NoError(t, repos.JobOrder.Create(ctx, o))
	}

	counts, err := repos.JobOrder.CountByStatus(ctx, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[entity.StatusSent])
	assert.EqualValues(t, 1, counts[entity.StatusCompleted])
	assert.EqualValues(t, 0, counts[entity.StatusInProcess])

	counts, err = repos.JobOrder.CountByStatus(ctx, "other-vendor")
	require.NoError(t, err)
	assert.EqualValues(t, 0, counts[entity.StatusSent])

	n, err := repos.JobOrder.CountByVendor(ctx, vendor.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	orders, total, err := repos.JobOrder.List(ctx, repository.JobOrderListParams{Status: entity.StatusSent, Size: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, orders, 1)
	assert.Equal(t, "jo-b", orders[0].ID, "newest first")
	require.Len(t, orders[0].MaterialsIssued, 1)
	require.NotNil(t, orders[0].Vendor)

	require.NoError(t, repos.JobOrder.AppendReceipts(ctx, []entity.JobOrderReceivedMaterial{
		{JobOrderID: "jo-a", SortOrder: 0, ReceiptNo: 1, MaterialID: "m1", Quantity: 4, Unit: entity.UnitKg, ReceivedAt: now},
		{JobOrderID: "jo-a", SortOrder: 0, ReceiptNo: 2, MaterialID: "m1", Quantity: 6, Unit: entity.UnitKg, ReceivedAt: now},
	}))
	o, err := repos.JobOrder.FindByID(ctx, "jo-a")
	require.NoError(t, err)
	require.Len(t, o.MaterialsReceived, 2)
	assert.Equal(t, 3, o.NextReceiptNo())

	stamp := time.Date(2024, 3, 20, 9, 30, 0, 0, time.UTC)
	require.NoError(t, repos.JobOrder.UpdateStatus(ctx, "jo-b", entity.StatusCompleted, &stamp, stamp))
	o, err = repos.JobOrder.FindByID(ctx, "jo-b")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, o.Status)
	assert.True(t, o.UpdatedAt.Equal(stamp), "updated_at %v", o.UpdatedAt)
	require.NotNil(t, o.ActualCompletionDate)
	assert.True(t, o.ActualCompletionDate.Equal(stamp))

	o.Status = entity.StatusPartiallyReturned
	o.UpdatedAt = stamp.Add(time.Hour)
	require.NoError(t, repos.JobOrder.SaveProgress(ctx, o))
	o, err = repos.JobOrder.FindByID(ctx, "jo-b")
	require.NoError(t, err)
	assert.True(t, o.UpdatedAt.Equal(stamp.Add(time.Hour)), "updated_at %v", o.UpdatedAt)

	assert.ErrorIs(t, repos.JobOrder.UpdateStatus(ctx, "missing", entity.StatusSent, nil, stamp), repository.ErrNotFound)
	_, err = repos.JobOrder.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestVendorRepositoryDuplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := repository.NewVendorRepository(db)
	v := testutil.SeedVendor(t, db, "ABC Dyeing Works", "", entity.JobWorkDyeing)

	found, err := repo.FindDuplicate(ctx, "abc dyeing works", "0000000000", "")
	require.NoError(t, err)
	assert.Equal(t, v.ID, found.ID)

	found, err = repo.FindDuplicate(ctx, "Someone Else", v.Phone, "")
	require.NoError(t, err)
	assert.Equal(t, v.ID, found.ID)

	_, err = repo.FindDuplicate(ctx, "ABC Dyeing Works", v.Phone, v.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	found, err = repo.FindByName(ctx, " abc DYEING works ")
	require.NoError(t, err)
	assert.Equal(t, v.ID, found.ID)
}
