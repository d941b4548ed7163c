package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/opensource-finance/bce/internal/domain"
)

func newTestRepo(t *testing.T) domain.Repository {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "bce-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpPath) })

	repo, err := New(domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: tmpPath,
	})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	tenantID := "tenant-001"

	t.Run("Ping", func(t *testing.T) {
		if err := repo.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})

	t.Run("SaveAndGetExceptionItem", func(t *testing.T) {
		item := &domain.ExceptionItem{
			ItemNo:  1001,
			Carrier: "AA",
			Sequences: []domain.ExceptionSequence{
				{
					ItemNo: 1001,
					SeqNo:  1,
					Segments: []domain.ExceptionSegment{
						{SegNo: 1, ViaCarrier: "AA", RestrictionTag: domain.TagPermitted, BookingCode1: "Y"},
					},
				},
				{
					ItemNo: 1001,
					SeqNo:  2,
					Segments: []domain.ExceptionSegment{
						{SegNo: 1, ViaCarrier: "BA", RestrictionTag: domain.TagRequired, BookingCode1: "J", BookingCode2: "C"},
					},
				},
			},
		}

		if err := repo.SaveExceptionItem(ctx, tenantID, item); err != nil {
			t.Fatalf("SaveExceptionItem failed: %v", err)
		}

		got, err := repo.GetExceptionItem(ctx, tenantID, 1001)
		if err != nil {
			t.Fatalf("GetExceptionItem failed: %v", err)
		}

		if got.Carrier != "AA" {
			t.Errorf("expected carrier AA, got %s", got.Carrier)
		}
		if len(got.Sequences) != 2 {
			t.Fatalf("expected 2 sequences, got %d", len(got.Sequences))
		}
		if got.Sequences[1].SeqNo != 2 {
			t.Errorf("sequence order not preserved: %+v", got.Sequences)
		}
		if got.Sequences[1].Segments[0].BookingCode2 != "C" {
			t.Errorf("expected booking code 2 C, got %q", got.Sequences[1].Segments[0].BookingCode2)
		}
	})

	t.Run("ReplaceExceptionItem", func(t *testing.T) {
		item := &domain.ExceptionItem{
			ItemNo:    1001,
			Sequences: []domain.ExceptionSequence{{ItemNo: 1001, SeqNo: 9}},
		}
		if err := repo.SaveExceptionItem(ctx, tenantID, item); err != nil {
			t.Fatalf("SaveExceptionItem failed: %v", err)
		}

		got, err := repo.GetExceptionItem(ctx, tenantID, 1001)
		if err != nil {
			t.Fatalf("GetExceptionItem failed: %v", err)
		}
		if len(got.Sequences) != 1 || got.Sequences[0].SeqNo != 9 {
			t.Errorf("expected item to be replaced, got %+v", got.Sequences)
		}
	})

	t.Run("TenantIsolation", func(t *testing.T) {
		_, err := repo.GetExceptionItem(ctx, "tenant-002", 1001)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for different tenant, got: %v", err)
		}
	})

	t.Run("RequiresTenantID", func(t *testing.T) {
		err := repo.SaveExceptionItem(ctx, "", &domain.ExceptionItem{ItemNo: 1})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got: %v", err)
		}

		_, err = repo.GetVerdict(ctx, "", "v-1")
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got: %v", err)
		}

		_, err = repo.ListRBDCabins(ctx, "")
		if err == nil {
			t.Error("expected error for empty tenantID")
		}
	})

	t.Run("RBDCabins", func(t *testing.T) {
		eff := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		rows := []domain.RBDCabin{
			{Carrier: "AA", BookingCode: "Y", Cabin: domain.CabinEconomy},
			{Carrier: "AA", BookingCode: "J", Cabin: domain.CabinBusiness, EffDate: eff},
		}
		if err := repo.SaveRBDCabins(ctx, tenantID, rows); err != nil {
			t.Fatalf("SaveRBDCabins failed: %v", err)
		}

		// Upsert on the same key changes the cabin.
		rows[0].Cabin = domain.CabinEconomyPremium
		if err := repo.SaveRBDCabins(ctx, tenantID, rows[:1]); err != nil {
			t.Fatalf("SaveRBDCabins failed: %v", err)
		}

		got, err := repo.ListRBDCabins(ctx, tenantID)
		if err != nil {
			t.Fatalf("ListRBDCabins failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(got))
		}
		if got[0].BookingCode != "J" || !got[0].EffDate.Equal(eff) {
			t.Errorf("unexpected first row: %+v", got[0])
		}
		if got[1].Cabin != domain.CabinEconomyPremium {
			t.Errorf("expected Y to map to premium economy, got %s", got[1].Cabin)
		}
	})

	t.Run("RBDCabinsRejectInvalidCabin", func(t *testing.T) {
		err := repo.SaveRBDCabins(ctx, tenantID, []domain.RBDCabin{
			{Carrier: "AA", BookingCode: "Q", Cabin: domain.CabinInvalid},
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got: %v", err)
		}
	})

	t.Run("TSIDefinitions", func(t *testing.T) {
		defs := []*domain.TSIDefinition{
			{ID: 18, Name: "Transatlantic", Expression: `seg.origin.area != seg.destination.area`, Enabled: true},
			{ID: 5, Expression: `seg.index == 0`, Arrival: true, Enabled: true},
			{ID: 7, Expression: `true`, Enabled: false},
		}
		for _, d := range defs {
			if err := repo.SaveTSIDefinition(ctx, tenantID, d); err != nil {
				t.Fatalf("SaveTSIDefinition(%d) failed: %v", d.ID, err)
			}
		}

		got, err := repo.ListTSIDefinitions(ctx, tenantID)
		if err != nil {
			t.Fatalf("ListTSIDefinitions failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 enabled definitions, got %d", len(got))
		}
		if got[0].ID != 5 || !got[0].Arrival || got[0].Name != "TSI 5" {
			t.Errorf("unexpected first definition: %+v", got[0])
		}
		if got[1].TenantID != tenantID {
			t.Errorf("expected tenant %s, got %s", tenantID, got[1].TenantID)
		}
	})

	t.Run("TSIDefinitionRequiresExpression", func(t *testing.T) {
		err := repo.SaveTSIDefinition(ctx, tenantID, &domain.TSIDefinition{ID: 3})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got: %v", err)
		}
	})

	t.Run("Zones", func(t *testing.T) {
		zone := &domain.Zone{
			Zone: "0000210",
			Locations: []domain.LocKey{
				{Type: domain.LocNation, Code: "US"},
				{Type: domain.LocCity, Code: "YTO"},
			},
		}
		if err := repo.SaveZone(ctx, tenantID, zone); err != nil {
			t.Fatalf("SaveZone failed: %v", err)
		}

		got, err := repo.ListZones(ctx, tenantID)
		if err != nil {
			t.Fatalf("ListZones failed: %v", err)
		}
		if len(got) != 1 || len(got[0].Locations) != 2 {
			t.Fatalf("unexpected zones: %+v", got)
		}
		if got[0].Locations[1].Code != "YTO" {
			t.Errorf("expected YTO, got %s", got[0].Locations[1].Code)
		}
	})

	t.Run("SaveAndGetVerdict", func(t *testing.T) {
		v := &domain.Verdict{
			ID:        "verdict-001",
			RequestID: "req-001",
			ItemNo:    1001,
			FareID:    "fare-1",
			Status:    domain.VerdictPass,
			Applied:   true,
			Timestamp: time.Now().UTC(),
			Segments: []domain.SegmentVerdict{
				{SegmentID: "S1", BookingCode: "Y", Flags: []string{"PASS"}, Status: domain.VerdictPass},
			},
			Metadata: domain.VerdictMetadata{TraceID: "trace-001"},
		}

		if err := repo.SaveVerdict(ctx, tenantID, v); err != nil {
			t.Fatalf("SaveVerdict failed: %v", err)
		}

		got, err := repo.GetVerdict(ctx, tenantID, v.ID)
		if err != nil {
			t.Fatalf("GetVerdict failed: %v", err)
		}
		if got.Status != domain.VerdictPass {
			t.Errorf("expected status PASS, got %s", got.Status)
		}
		if len(got.Segments) != 1 || got.Segments[0].BookingCode != "Y" {
			t.Errorf("unexpected segments: %+v", got.Segments)
		}
		if got.Metadata.TraceID != "trace-001" {
			t.Errorf("expected trace-001, got %s", got.Metadata.TraceID)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.GetExceptionItem(ctx, tenantID, 424242)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}

		_, err = repo.GetVerdict(ctx, tenantID, "nonexistent")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})
}

func TestInMemorySQLite(t *testing.T) {
	repo, err := New(domain.RepositoryConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	if err := repo.SaveZone(ctx, "t1", &domain.Zone{Zone: "Z1"}); err != nil {
		t.Fatalf("SaveZone failed: %v", err)
	}
	zones, err := repo.ListZones(ctx, "t1")
	if err != nil {
		t.Fatalf("ListZones failed: %v", err)
	}
	if len(zones) != 1 {
		t.Errorf("expected 1 zone, got %d", len(zones))
	}
}

func TestUnsupportedDriver(t *testing.T) {
	cfg := domain.RepositoryConfig{
		Driver: "mysql",
	}

	_, err := New(cfg)
	if err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestRebind(t *testing.T) {
	repo := &SQLRepository{driver: "postgres"}

	tests := []struct {
		input    string
		expected string
	}{
		{"SELECT * FROM t WHERE id = ?", "SELECT * FROM t WHERE id = $1"},
		{"INSERT INTO t (a, b) VALUES (?, ?)", "INSERT INTO t (a, b) VALUES ($1, $2)"},
		{"SELECT * FROM t", "SELECT * FROM t"},
	}

	for _, tt := range tests {
		result := repo.rebind(tt.input)
		if result != tt.expected {
			t.Errorf("rebind(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}

	sqlite := &SQLRepository{driver: "sqlite"}
	if got := sqlite.rebind("a = ?"); got != "a = ?" {
		t.Errorf("sqlite rebind changed query: %q", got)
	}
}

func TestPostgresDSN(t *testing.T) {
	dsn := postgresDSN(domain.RepositoryConfig{PostgresUser: "bce"})
	want := "host=localhost port=5432 dbname=bce sslmode=disable application_name=bce user=bce"
	if dsn != want {
		t.Errorf("postgresDSN = %q, want %q", dsn, want)
	}
}
