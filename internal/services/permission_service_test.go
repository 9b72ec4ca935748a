package services

import (
	"testing"

	"ledgerdesk/internal/models"
	"ledgerdesk/internal/testutil"
)

func TestAllowed(t *testing.T) {
	t.Run("manager_bypasses_policy", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPermissionService(db)

		for _, action := range []string{"create", "view", "edit", "delete"} {
			ok, err := svc.Allowed(1, models.RoleManager, models.ModuleTransactions, action)
			testutil.AssertNoError(t, err)
			if !ok {
				t.Errorf("expected manager allowed to %s", action)
			}
		}
	})

	t.Run("absent_module_denies", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPermissionService(db)

		ok, err := svc.Allowed(1, models.RoleUser, models.ModuleInvoices, "view")
		testutil.AssertNoError(t, err)
		if ok {
			t.Error("expected denial for a module with no stored grant")
		}
	})

	t.Run("grant_controls_actions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPermissionService(db)

		err := svc.ReplaceRolePermissions(1, models.RoleUser, map[string]Grant{
			models.ModuleTransactions: {View: true, Create: true},
		})
		testutil.AssertNoError(t, err)

		ok, err := svc.Allowed(1, models.RoleUser, models.ModuleTransactions, "view")
		testutil.AssertNoError(t, err)
		if !ok {
			t.Error("expected view allowed")
		}
		ok, err = svc.Allowed(1, models.RoleUser, models.ModuleTransactions, "delete")
		testutil.AssertNoError(t, err)
		if ok {
			t.Error("expected delete denied")
		}
	})

	t.Run("unknown_action_denies", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPermissionService(db)

		err := svc.ReplaceRolePermissions(1, models.RoleUser, map[string]Grant{
			models.ModuleTransactions: {Create: true, View: true, Edit: true, Delete: true},
		})
		testutil.AssertNoError(t, err)

		ok, err := svc.Allowed(1, models.RoleUser, models.ModuleTransactions, "export")
		testutil.AssertNoError(t, err)
		if ok {
			t.Error("expected unknown action denied")
		}
	})
}

func TestReplaceRolePermissions(t *testing.T) {
	t.Run("replacement_drops_old_grants", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPermissionService(db)

		err := svc.ReplaceRolePermissions(1, models.RoleUser, map[string]Grant{
			models.ModuleTransactions: {View: true},
			models.ModuleInvoices:     {View: true},
		})
		testutil.AssertNoError(t, err)

		err = svc.ReplaceRolePermissions(1, models.RoleUser, map[string]Grant{
			models.ModuleInvoices: {View: true, Edit: true},
		})
		testutil.AssertNoError(t, err)

		grants, err := svc.GetRolePermissions(1, models.RoleUser)
		testutil.AssertNoError(t, err)

		if len(grants) != 1 {
			t.Fatalf("expected 1 module after replacement, got %d", len(grants))
		}
		if _, ok := grants[models.ModuleTransactions]; ok {
			t.Error("expected transactions grant dropped")
		}
		if !grants[models.ModuleInvoices].Edit {
			t.Error("expected invoices edit granted")
		}

		// The cache must not serve the pre-replacement map.
		ok, err := svc.Allowed(1, models.RoleUser, models.ModuleTransactions, "view")
		testutil.AssertNoError(t, err)
		if ok {
			t.Error("expected stale cached grant invalidated")
		}
	})

	t.Run("manager_is_immutable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPermissionService(db)

		err := svc.ReplaceRolePermissions(1, models.RoleManager, map[string]Grant{
			models.ModuleTransactions: {View: true},
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_module_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPermissionService(db)

		err := svc.ReplaceRolePermissions(1, models.RoleUser, map[string]Grant{
			"payroll": {View: true},
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("roles_are_independent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPermissionService(db)

		err := svc.ReplaceRolePermissions(1, models.RoleUser, map[string]Grant{
			models.ModuleTransactions: {View: true},
		})
		testutil.AssertNoError(t, err)
		err = svc.ReplaceRolePermissions(1, models.RoleAudit, map[string]Grant{
			models.ModuleReports: {View: true},
		})
		testutil.AssertNoError(t, err)

		userGrants, err := svc.GetRolePermissions(1, models.RoleUser)
		testutil.AssertNoError(t, err)
		auditGrants, err := svc.GetRolePermissions(1, models.RoleAudit)
		testutil.AssertNoError(t, err)

		if _, ok := userGrants[models.ModuleReports]; ok {
			t.Error("expected user role untouched by audit grants")
		}
		if _, ok := auditGrants[models.ModuleTransactions]; ok {
			t.Error("expected audit role untouched by user grants")
		}
	})
}

func TestAuditScope(t *testing.T) {
	t.Run("absent_scope_is_nil", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPermissionService(db)

		scope, err := svc.GetAuditScope(42)
		testutil.AssertNoError(t, err)
		if scope != nil {
			t.Error("expected nil scope when none is stored")
		}

		// Second read exercises the cached-absence path.
		scope, err = svc.GetAuditScope(42)
		testutil.AssertNoError(t, err)
		if scope != nil {
			t.Error("expected cached absence to stay nil")
		}
	})

	t.Run("set_and_read_back", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPermissionService(db)

		_, err := svc.SetAuditScope(1, []uint{3, 5}, []uint{7})
		testutil.AssertNoError(t, err)

		scope, err := svc.GetAuditScope(1)
		testutil.AssertNoError(t, err)
		if scope == nil {
			t.Fatal("expected a stored scope")
		}
		if got := scope.Storages(); len(got) != 2 || got[0] != 3 || got[1] != 5 {
			t.Errorf("unexpected storage ids: %v", got)
		}
		if got := scope.Methods(); len(got) != 1 || got[0] != 7 {
			t.Errorf("unexpected method ids: %v", got)
		}
	})

	t.Run("upsert_replaces_lists", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPermissionService(db)

		_, err := svc.SetAuditScope(1, []uint{1}, []uint{1})
		testutil.AssertNoError(t, err)
		_, err = svc.SetAuditScope(1, []uint{9}, nil)
		testutil.AssertNoError(t, err)

		scope, err := svc.GetAuditScope(1)
		testutil.AssertNoError(t, err)
		if got := scope.Storages(); len(got) != 1 || got[0] != 9 {
			t.Errorf("unexpected storage ids after upsert: %v", got)
		}
		if got := scope.Methods(); len(got) != 0 {
			t.Errorf("expected method list cleared, got %v", got)
		}

		var count int64
		db.Model(&models.AuditScope{}).Where("company_id = ?", 1).Count(&count)
		if count != 1 {
			t.Errorf("expected a single scope row per company, got %d", count)
		}
	})
}
