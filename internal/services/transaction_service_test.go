package services

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"ledgerdesk/internal/models"
	"ledgerdesk/internal/pagination"
	"ledgerdesk/internal/testutil"
)

type txFixture struct {
	db      *gorm.DB
	svc     TransactionServicer
	user    *models.User
	company *models.Company
	cat     *models.Category
	method  *models.Method
	storage *models.Storage
}

func setupTxFixture(t *testing.T, categoryType models.TransactionType) *txFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	user := testutil.CreateTestUser(t, db)
	company := testutil.CreateTestCompany(t, db, user)

	return &txFixture{
		db:      db,
		svc:     NewTransactionService(db, NewCategoryService(db), NewMethodService(db), NewStorageService(db)),
		user:    user,
		company: company,
		cat:     testutil.CreateTestCategory(t, db, company.ID, categoryType),
		method:  testutil.CreateTestMethod(t, db, company.ID),
		storage: testutil.CreateTestStorage(t, db, company.ID),
	}
}

func (f *txFixture) storageBalance(t *testing.T) float64 {
	t.Helper()
	var storage models.Storage
	if err := f.db.First(&storage, f.storage.ID).Error; err != nil {
		t.Fatalf("failed to reload storage: %v", err)
	}
	return storage.Balance
}

func TestCreateTransaction(t *testing.T) {
	t.Run("inflow_increases_balance", func(t *testing.T) {
		f := setupTxFixture(t, models.TransactionTypeInflow)

		tx, err := f.svc.CreateTransaction(f.company.ID, f.user.ID, CreateTransactionInput{
			Type:       models.TransactionTypeInflow,
			Amount:     150.50,
			CategoryID: f.cat.ID,
			MethodID:   f.method.ID,
			StorageID:  f.storage.ID,
		})
		testutil.AssertNoError(t, err)

		if tx.ID == 0 {
			t.Fatal("expected non-zero transaction ID")
		}
		if tx.TCID != 1 {
			t.Errorf("expected first company TCID 1, got %d", tx.TCID)
		}
		if tx.CorrelationID == "" {
			t.Error("expected a correlation ID to be assigned")
		}
		if got := f.storageBalance(t); got != 150.50 {
			t.Errorf("expected balance 150.50, got %v", got)
		}
	})

	t.Run("outflow_decreases_balance", func(t *testing.T) {
		f := setupTxFixture(t, models.TransactionTypeOutflow)

		_, err := f.svc.CreateTransaction(f.company.ID, f.user.ID, CreateTransactionInput{
			Type:       models.TransactionTypeOutflow,
			Amount:     40,
			CategoryID: f.cat.ID,
			MethodID:   f.method.ID,
			StorageID:  f.storage.ID,
		})
		testutil.AssertNoError(t, err)

		if got := f.storageBalance(t); got != -40 {
			t.Errorf("expected balance -40, got %v", got)
		}
	})

	t.Run("tcid_sequences_per_company", func(t *testing.T) {
		f := setupTxFixture(t, models.TransactionTypeInflow)

		for want := uint(1); want <= 3; want++ {
			tx, err := f.svc.CreateTransaction(f.company.ID, f.user.ID, CreateTransactionInput{
				Type:       models.TransactionTypeInflow,
				Amount:     10,
				CategoryID: f.cat.ID,
				MethodID:   f.method.ID,
				StorageID:  f.storage.ID,
			})
			testutil.AssertNoError(t, err)
			if tx.TCID != want {
				t.Errorf("expected TCID %d, got %d", want, tx.TCID)
			}
		}
	})

	t.Run("tcid_conflict_retries_with_fresh_sequence", func(t *testing.T) {
		f := setupTxFixture(t, models.TransactionTypeInflow)

		// A rival row claims the freshly computed tcid inside the same
		// insert, as a concurrent create for the company would.
		collided := false
		err := f.db.Callback().Create().Before("gorm:create").Register("rival_tcid", func(d *gorm.DB) {
			if collided || d.Statement.Table != "transactions" {
				return
			}
			collided = true
			d.Session(&gorm.Session{NewDB: true}).Exec(
				"INSERT INTO transactions (tcid, company_id, user_id, date, type, amount, category_id, method_id, storage_id, is_deleted, correlation_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
				1, f.company.ID, f.user.ID, time.Now(), models.TransactionTypeInflow, 5.0, f.cat.ID, f.method.ID, f.storage.ID, false, "rival",
			)
		})
		testutil.AssertNoError(t, err)

		tx, err := f.svc.CreateTransaction(f.company.ID, f.user.ID, CreateTransactionInput{
			Type:       models.TransactionTypeInflow,
			Amount:     10,
			CategoryID: f.cat.ID,
			MethodID:   f.method.ID,
			StorageID:  f.storage.ID,
		})
		testutil.AssertNoError(t, err)

		if !collided {
			t.Fatal("expected the rival insert to fire")
		}
		// The losing attempt rolled back, taking the rival row with it,
		// so the retry restarts the sequence.
		if tx.TCID != 1 {
			t.Errorf("expected TCID 1 after retry, got %d", tx.TCID)
		}
		var count int64
		f.db.Model(&models.Transaction{}).Where("company_id = ?", f.company.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected a single persisted transaction, got %d", count)
		}
	})

	t.Run("duplicate_tcid_is_a_translated_duplicate_key", func(t *testing.T) {
		f := setupTxFixture(t, models.TransactionTypeInflow)

		row := func() *models.Transaction {
			return &models.Transaction{
				TCID:       7,
				CompanyID:  f.company.ID,
				UserID:     f.user.ID,
				Date:       time.Now(),
				Type:       models.TransactionTypeInflow,
				Amount:     1,
				CategoryID: f.cat.ID,
				MethodID:   f.method.ID,
				StorageID:  f.storage.ID,
			}
		}
		testutil.AssertNoError(t, f.db.Create(row()).Error)

		err := f.db.Create(row()).Error
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			t.Fatalf("expected gorm.ErrDuplicatedKey, got %v", err)
		}
	})

	t.Run("category_type_mismatch", func(t *testing.T) {
		f := setupTxFixture(t, models.TransactionTypeInflow)

		_, err := f.svc.CreateTransaction(f.company.ID, f.user.ID, CreateTransactionInput{
			Type:       models.TransactionTypeOutflow,
			Amount:     10,
			CategoryID: f.cat.ID,
			MethodID:   f.method.ID,
			StorageID:  f.storage.ID,
		})
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")
	})

	t.Run("invalid_type", func(t *testing.T) {
		f := setupTxFixture(t, models.TransactionTypeInflow)

		_, err := f.svc.CreateTransaction(f.company.ID, f.user.ID, CreateTransactionInput{
			Type:       "transfer",
			Amount:     10,
			CategoryID: f.cat.ID,
			MethodID:   f.method.ID,
			StorageID:  f.storage.ID,
		})
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
	})

	t.Run("zero_amount", func(t *testing.T) {
		f := setupTxFixture(t, models.TransactionTypeInflow)

		_, err := f.svc.CreateTransaction(f.company.ID, f.user.ID, CreateTransactionInput{
			Type:       models.TransactionTypeInflow,
			Amount:     0,
			CategoryID: f.cat.ID,
			MethodID:   f.method.ID,
			StorageID:  f.storage.ID,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_method", func(t *testing.T) {
		f := setupTxFixture(t, models.TransactionTypeInflow)

		_, err := f.svc.CreateTransaction(f.company.ID, f.user.ID, CreateTransactionInput{
			Type:       models.TransactionTypeInflow,
			Amount:     10,
			CategoryID: f.cat.ID,
			MethodID:   99999,
			StorageID:  f.storage.ID,
		})
		testutil.AssertAppError(t, err, "METHOD_NOT_FOUND")
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("rebalances_storage", func(t *testing.T) {
		f := setupTxFixture(t, models.TransactionTypeInflow)

		tx, err := f.svc.CreateTransaction(f.company.ID, f.user.ID, CreateTransactionInput{
			Type:       models.TransactionTypeInflow,
			Amount:     100,
			CategoryID: f.cat.ID,
			MethodID:   f.method.ID,
			StorageID:  f.storage.ID,
		})
		testutil.AssertNoError(t, err)

		updated, err := f.svc.UpdateTransaction(f.company.ID, tx.ID, CreateTransactionInput{
			Type:       models.TransactionTypeInflow,
			Amount:     250,
			CategoryID: f.cat.ID,
			MethodID:   f.method.ID,
			StorageID:  f.storage.ID,
		})
		testutil.AssertNoError(t, err)

		if updated.Amount != 250 {
			t.Errorf("expected amount 250, got %v", updated.Amount)
		}
		if got := f.storageBalance(t); got != 250 {
			t.Errorf("expected balance 250 after update, got %v", got)
		}
	})

	t.Run("moves_between_storages", func(t *testing.T) {
		f := setupTxFixture(t, models.TransactionTypeInflow)
		other := testutil.CreateTestStorage(t, f.db, f.company.ID)

		tx, err := f.svc.CreateTransaction(f.company.ID, f.user.ID, CreateTransactionInput{
			Type:       models.TransactionTypeInflow,
			Amount:     100,
			CategoryID: f.cat.ID,
			MethodID:   f.method.ID,
			StorageID:  f.storage.ID,
		})
		testutil.AssertNoError(t, err)

		_, err = f.svc.UpdateTransaction(f.company.ID, tx.ID, CreateTransactionInput{
			Type:       models.TransactionTypeInflow,
			Amount:     100,
			CategoryID: f.cat.ID,
			MethodID:   f.method.ID,
			StorageID:  other.ID,
		})
		testutil.AssertNoError(t, err)

		if got := f.storageBalance(t); got != 0 {
			t.Errorf("expected old storage balance 0, got %v", got)
		}
		var reloaded models.Storage
		f.db.First(&reloaded, other.ID)
		if reloaded.Balance != 100 {
			t.Errorf("expected new storage balance 100, got %v", reloaded.Balance)
		}
	})

	t.Run("archived_is_immutable", func(t *testing.T) {
		f := setupTxFixture(t, models.TransactionTypeInflow)

		tx, err := f.svc.CreateTransaction(f.company.ID, f.user.ID, CreateTransactionInput{
			Type:       models.TransactionTypeInflow,
			Amount:     100,
			CategoryID: f.cat.ID,
			MethodID:   f.method.ID,
			StorageID:  f.storage.ID,
		})
		testutil.AssertNoError(t, err)
		testutil.AssertNoError(t, f.svc.ArchiveTransaction(f.company.ID, tx.ID))

		_, err = f.svc.UpdateTransaction(f.company.ID, tx.ID, CreateTransactionInput{
			Type:       models.TransactionTypeInflow,
			Amount:     1,
			CategoryID: f.cat.ID,
			MethodID:   f.method.ID,
			StorageID:  f.storage.ID,
		})
		testutil.AssertAppError(t, err, "TRANSACTION_ARCHIVED")
	})
}

func TestArchiveRestoreTransaction(t *testing.T) {
	t.Run("archive_reverses_and_restore_reapplies", func(t *testing.T) {
		f := setupTxFixture(t, models.TransactionTypeInflow)

		tx, err := f.svc.CreateTransaction(f.company.ID, f.user.ID, CreateTransactionInput{
			Type:       models.TransactionTypeInflow,
			Amount:     75,
			CategoryID: f.cat.ID,
			MethodID:   f.method.ID,
			StorageID:  f.storage.ID,
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, f.svc.ArchiveTransaction(f.company.ID, tx.ID))
		if got := f.storageBalance(t); got != 0 {
			t.Errorf("expected balance 0 after archive, got %v", got)
		}

		testutil.AssertNoError(t, f.svc.RestoreTransaction(f.company.ID, tx.ID))
		if got := f.storageBalance(t); got != 75 {
			t.Errorf("expected balance 75 after restore, got %v", got)
		}
	})

	t.Run("double_archive", func(t *testing.T) {
		f := setupTxFixture(t, models.TransactionTypeInflow)

		tx, err := f.svc.CreateTransaction(f.company.ID, f.user.ID, CreateTransactionInput{
			Type:       models.TransactionTypeInflow,
			Amount:     10,
			CategoryID: f.cat.ID,
			MethodID:   f.method.ID,
			StorageID:  f.storage.ID,
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, f.svc.ArchiveTransaction(f.company.ID, tx.ID))
		err = f.svc.ArchiveTransaction(f.company.ID, tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_ARCHIVED")
	})

	t.Run("restore_live_transaction", func(t *testing.T) {
		f := setupTxFixture(t, models.TransactionTypeInflow)

		tx, err := f.svc.CreateTransaction(f.company.ID, f.user.ID, CreateTransactionInput{
			Type:       models.TransactionTypeInflow,
			Amount:     10,
			CategoryID: f.cat.ID,
			MethodID:   f.method.ID,
			StorageID:  f.storage.ID,
		})
		testutil.AssertNoError(t, err)

		err = f.svc.RestoreTransaction(f.company.ID, tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_ARCHIVED")
	})
}

func TestGetCompanyTransactions(t *testing.T) {
	t.Run("excludes_archived", func(t *testing.T) {
		f := setupTxFixture(t, models.TransactionTypeInflow)

		live, err := f.svc.CreateTransaction(f.company.ID, f.user.ID, CreateTransactionInput{
			Type:       models.TransactionTypeInflow,
			Amount:     10,
			CategoryID: f.cat.ID,
			MethodID:   f.method.ID,
			StorageID:  f.storage.ID,
		})
		testutil.AssertNoError(t, err)

		archived, err := f.svc.CreateTransaction(f.company.ID, f.user.ID, CreateTransactionInput{
			Type:       models.TransactionTypeInflow,
			Amount:     20,
			CategoryID: f.cat.ID,
			MethodID:   f.method.ID,
			StorageID:  f.storage.ID,
		})
		testutil.AssertNoError(t, err)
		testutil.AssertNoError(t, f.svc.ArchiveTransaction(f.company.ID, archived.ID))

		page := pagination.PageRequest{Page: 1, Limit: 20}
		result, err := f.svc.GetCompanyTransactions(f.company.ID, page, TransactionFilter{}, nil)
		testutil.AssertNoError(t, err)

		if result.Meta.Total != 1 {
			t.Fatalf("expected 1 live transaction, got %d", result.Meta.Total)
		}
		if result.Result[0].ID != live.ID {
			t.Errorf("expected live transaction %d, got %d", live.ID, result.Result[0].ID)
		}

		archivedList, err := f.svc.GetArchivedTransactions(f.company.ID, page)
		testutil.AssertNoError(t, err)
		if archivedList.Meta.Total != 1 {
			t.Errorf("expected 1 archived transaction, got %d", archivedList.Meta.Total)
		}
	})

	t.Run("date_and_type_filters", func(t *testing.T) {
		f := setupTxFixture(t, models.TransactionTypeInflow)
		outCat := testutil.CreateTestCategory(t, f.db, f.company.ID, models.TransactionTypeOutflow)

		old := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
		recent := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

		_, err := f.svc.CreateTransaction(f.company.ID, f.user.ID, CreateTransactionInput{
			Date: old, Type: models.TransactionTypeInflow, Amount: 10,
			CategoryID: f.cat.ID, MethodID: f.method.ID, StorageID: f.storage.ID,
		})
		testutil.AssertNoError(t, err)
		_, err = f.svc.CreateTransaction(f.company.ID, f.user.ID, CreateTransactionInput{
			Date: recent, Type: models.TransactionTypeInflow, Amount: 20,
			CategoryID: f.cat.ID, MethodID: f.method.ID, StorageID: f.storage.ID,
		})
		testutil.AssertNoError(t, err)
		_, err = f.svc.CreateTransaction(f.company.ID, f.user.ID, CreateTransactionInput{
			Date: recent, Type: models.TransactionTypeOutflow, Amount: 30,
			CategoryID: outCat.ID, MethodID: f.method.ID, StorageID: f.storage.ID,
		})
		testutil.AssertNoError(t, err)

		from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		inflow := models.TransactionTypeInflow
		page := pagination.PageRequest{Page: 1, Limit: 20}
		result, err := f.svc.GetCompanyTransactions(f.company.ID, page, TransactionFilter{
			FromDate: &from,
			Type:     &inflow,
		}, nil)
		testutil.AssertNoError(t, err)

		if result.Meta.Total != 1 {
			t.Errorf("expected 1 filtered transaction, got %d", result.Meta.Total)
		}
		if result.Result[0].Amount != 20 {
			t.Errorf("expected amount 20, got %v", result.Result[0].Amount)
		}
	})

	t.Run("audit_scope_restricts_storages", func(t *testing.T) {
		f := setupTxFixture(t, models.TransactionTypeInflow)
		hiddenStorage := testutil.CreateTestStorage(t, f.db, f.company.ID)

		_, err := f.svc.CreateTransaction(f.company.ID, f.user.ID, CreateTransactionInput{
			Type: models.TransactionTypeInflow, Amount: 10,
			CategoryID: f.cat.ID, MethodID: f.method.ID, StorageID: f.storage.ID,
		})
		testutil.AssertNoError(t, err)
		_, err = f.svc.CreateTransaction(f.company.ID, f.user.ID, CreateTransactionInput{
			Type: models.TransactionTypeInflow, Amount: 20,
			CategoryID: f.cat.ID, MethodID: f.method.ID, StorageID: hiddenStorage.ID,
		})
		testutil.AssertNoError(t, err)

		scope := &models.AuditScope{CompanyID: f.company.ID}
		scope.SetStorages([]uint{f.storage.ID})

		page := pagination.PageRequest{Page: 1, Limit: 20}
		result, err := f.svc.GetCompanyTransactions(f.company.ID, page, TransactionFilter{}, scope)
		testutil.AssertNoError(t, err)

		if result.Meta.Total != 1 {
			t.Fatalf("expected 1 scoped transaction, got %d", result.Meta.Total)
		}
		if result.Result[0].StorageID != f.storage.ID {
			t.Errorf("expected transaction from scoped storage %d, got %d", f.storage.ID, result.Result[0].StorageID)
		}
	})
}
