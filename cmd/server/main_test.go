package main

import (
	"bytes"
	"log/slog"
	"testing"

	qt "github.com/frankban/quicktest"

	"privacy-guard/internal/config"
	"privacy-guard/internal/database"
	"privacy-guard/internal/models"
	"privacy-guard/internal/testutil"
)

func captureLogs(c *qt.C) *bytes.Buffer {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	c.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestCreateDefaultAdminOnce(t *testing.T) {
	c := qt.New(t)
	db := testutil.NewTestDB(t)
	cfg := config.Default()
	cfg.Admin.Email = " Admin@Acme.test "

	createDefaultAdmin(db, cfg)
	createDefaultAdmin(db, cfg)

	var admins []models.User
	c.Assert(db.Find(&admins).Error, qt.IsNil)
	c.Assert(admins, qt.HasLen, 1)
	c.Assert(admins[0].Email, qt.Equals, "admin@acme.test")
	c.Assert(admins[0].Role, qt.Equals, models.RoleAdmin)
	c.Assert(admins[0].CheckPassword(cfg.Admin.Password), qt.IsTrue)
}

func TestCreateDefaultAdminLookupFailure(t *testing.T) {
	c := qt.New(t)
	logs := captureLogs(c)

	db := testutil.NewTestDB(t)
	c.Assert(database.Close(db), qt.IsNil)

	createDefaultAdmin(db, config.Default())

	c.Assert(logs.String(), qt.Contains, "look up default admin")
	c.Assert(logs.String(), qt.Not(qt.Contains), "create default admin")
}
