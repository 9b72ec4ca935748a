package services

import (
	"testing"

	"ledgerdesk/internal/models"
	"ledgerdesk/internal/testutil"
)

func TestCreateStorage(t *testing.T) {
	t.Run("opening_balance_seeds_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStorageService(db)
		user := testutil.CreateTestUser(t, db)
		company := testutil.CreateTestCompany(t, db, user)

		storage, err := svc.CreateStorage(company.ID, "Main Account", 1500)
		testutil.AssertNoError(t, err)

		if storage.OpeningBalance != 1500 || storage.Balance != 1500 {
			t.Errorf("expected opening and running balance 1500, got %v / %v", storage.OpeningBalance, storage.Balance)
		}
		if !storage.IsActive {
			t.Error("expected new storage active")
		}
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStorageService(db)
		user := testutil.CreateTestUser(t, db)
		company := testutil.CreateTestCompany(t, db, user)

		_, err := svc.CreateStorage(company.ID, "", 0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestApplyAmount(t *testing.T) {
	t.Run("inflow_and_outflow", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStorageService(db)
		user := testutil.CreateTestUser(t, db)
		company := testutil.CreateTestCompany(t, db, user)
		storage := testutil.CreateTestStorageWithBalance(t, db, company.ID, 100)

		testutil.AssertNoError(t, svc.ApplyAmount(db, storage.ID, models.TransactionTypeInflow, 50))
		testutil.AssertNoError(t, svc.ApplyAmount(db, storage.ID, models.TransactionTypeOutflow, 30))

		reloaded, err := svc.GetStorageByID(company.ID, storage.ID)
		testutil.AssertNoError(t, err)
		if reloaded.Balance != 120 {
			t.Errorf("expected balance 120, got %v", reloaded.Balance)
		}
	})

	t.Run("negative_amount_reverses", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStorageService(db)
		user := testutil.CreateTestUser(t, db)
		company := testutil.CreateTestCompany(t, db, user)
		storage := testutil.CreateTestStorage(t, db, company.ID)

		testutil.AssertNoError(t, svc.ApplyAmount(db, storage.ID, models.TransactionTypeInflow, 50))
		testutil.AssertNoError(t, svc.ApplyAmount(db, storage.ID, models.TransactionTypeInflow, -50))

		reloaded, err := svc.GetStorageByID(company.ID, storage.ID)
		testutil.AssertNoError(t, err)
		if reloaded.Balance != 0 {
			t.Errorf("expected balance back to 0, got %v", reloaded.Balance)
		}
	})
}

func TestUpdateStorage(t *testing.T) {
	t.Run("deactivate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStorageService(db)
		user := testutil.CreateTestUser(t, db)
		company := testutil.CreateTestCompany(t, db, user)
		storage := testutil.CreateTestStorage(t, db, company.ID)

		inactive := false
		updated, err := svc.UpdateStorage(company.ID, storage.ID, "", &inactive)
		testutil.AssertNoError(t, err)

		if updated.IsActive {
			t.Error("expected storage deactivated")
		}
	})
}

func TestDeleteStorage(t *testing.T) {
	t.Run("blocked_by_live_transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStorageService(db)
		user := testutil.CreateTestUser(t, db)
		company := testutil.CreateTestCompany(t, db, user)
		cat := testutil.CreateTestCategory(t, db, company.ID, models.TransactionTypeInflow)
		method := testutil.CreateTestMethod(t, db, company.ID)
		storage := testutil.CreateTestStorage(t, db, company.ID)

		testutil.CreateTestTransaction(t, db, company.ID, user.ID, models.TransactionTypeInflow, 10, cat.ID, method.ID, storage.ID)

		err := svc.DeleteStorage(company.ID, storage.ID)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("empty_storage_deletes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStorageService(db)
		user := testutil.CreateTestUser(t, db)
		company := testutil.CreateTestCompany(t, db, user)
		storage := testutil.CreateTestStorage(t, db, company.ID)

		testutil.AssertNoError(t, svc.DeleteStorage(company.ID, storage.ID))

		_, err := svc.GetStorageByID(company.ID, storage.ID)
		testutil.AssertAppError(t, err, "STORAGE_NOT_FOUND")
	})
}
