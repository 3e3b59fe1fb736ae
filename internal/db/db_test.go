package db

import (
	"strings"
	"testing"

	"github.com/ombrelle/switchboard/internal/models"
)

// --- DSN tests ---

func TestMySQLDSN(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		password string
		host     string
		port     int
		database string
		want     string
	}{
		{
			name: "no password",
			user: "root", host: "127.0.0.1", port: 3306, database: "switchboard",
			want: "root@tcp(127.0.0.1:3306)/switchboard?parseTime=true",
		},
		{
			name: "with password",
			user: "console", password: "s3cret", host: "db.internal", port: 3307, database: "switchboard",
			want: "console:s3cret@tcp(db.internal:3307)/switchboard?parseTime=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MySQLDSN(tt.user, tt.password, tt.host, tt.port, tt.database)
			if got != tt.want {
				t.Errorf("MySQLDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMySQLDSN_ParseTimeFlag(t *testing.T) {
	dsn := MySQLDSN("root", "", "localhost", 3306, "test")
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("DSN missing parseTime=true: %s", dsn)
	}
}

// --- Connect tests ---

func TestConnect_UnknownDriver(t *testing.T) {
	_, err := Connect("postgres", "whatever")
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	if !strings.Contains(err.Error(), "unknown driver") {
		t.Errorf("error = %q", err)
	}
}

func TestConnect_SQLiteMemory(t *testing.T) {
	gdb, err := Connect(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Connect sqlite: %v", err)
	}
	if err := AutoMigrate(gdb); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	for _, m := range AllModels() {
		if !gdb.Migrator().HasTable(m) {
			t.Errorf("missing table for %T", m)
		}
	}
}

// --- Migration helpers ---

func TestReset_RecreatesEmptyTables(t *testing.T) {
	gdb, err := Connect(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := AutoMigrate(gdb); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	gdb.Create(&models.Customer{Phone: "p1", Name: "Ana"})

	if err := Reset(gdb); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	var count int64
	gdb.Model(&models.Customer{}).Count(&count)
	if count != 0 {
		t.Errorf("customers after reset = %d, want 0", count)
	}
}

func TestSeedOfficeHours(t *testing.T) {
	gdb, err := Connect(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := AutoMigrate(gdb); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	deps := []string{"support", "sales", "accounts"}
	if err := SeedOfficeHours(gdb, deps, "08:00-17:00"); err != nil {
		t.Fatalf("SeedOfficeHours: %v", err)
	}

	var rows []models.OfficeHours
	gdb.Order("tag").Find(&rows)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}

	// Re-seeding must not clobber configured hours.
	gdb.Model(&models.OfficeHours{}).Where("tag = ?", "sales").Update("hours", "09:00-18:00")
	if err := SeedOfficeHours(gdb, deps, "08:00-17:00"); err != nil {
		t.Fatalf("re-seed: %v", err)
	}
	var sales models.OfficeHours
	gdb.Where("tag = ?", "sales").First(&sales)
	if sales.Hours != "09:00-18:00" {
		t.Errorf("sales hours = %q, want configured value kept", sales.Hours)
	}
}
