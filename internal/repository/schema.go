package repository

// Schema definitions for the BCE database.
// Compatible with both SQLite and PostgreSQL.

// schemaExceptionItems stores one row per item; the ordered sequences are
// kept as a JSON document since they are always read whole.
const schemaExceptionItems = `
CREATE TABLE IF NOT EXISTS exception_items (
    tenant_id TEXT NOT NULL,
    item_no INTEGER NOT NULL,
    carrier TEXT NOT NULL DEFAULT '',
    sequences TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (tenant_id, item_no)
);

CREATE INDEX IF NOT EXISTS idx_exception_items_carrier ON exception_items(tenant_id, carrier);
`

const schemaRBDCabins = `
CREATE TABLE IF NOT EXISTS rbd_cabins (
    tenant_id TEXT NOT NULL,
    carrier TEXT NOT NULL,
    booking_code TEXT NOT NULL,
    cabin INTEGER NOT NULL,
    eff_date TIMESTAMP NOT NULL,
    disc_date TIMESTAMP NOT NULL,
    PRIMARY KEY (tenant_id, carrier, booking_code, eff_date)
);

CREATE INDEX IF NOT EXISTS idx_rbd_cabins_tenant ON rbd_cabins(tenant_id);
`

const schemaTSIDefinitions = `
CREATE TABLE IF NOT EXISTS tsi_definitions (
    tenant_id TEXT NOT NULL,
    id INTEGER NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    expression TEXT NOT NULL,
    arrival INTEGER NOT NULL DEFAULT 0,
    enabled INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (tenant_id, id)
);

CREATE INDEX IF NOT EXISTS idx_tsi_definitions_enabled ON tsi_definitions(tenant_id, enabled);
`

const schemaZones = `
CREATE TABLE IF NOT EXISTS zones (
    tenant_id TEXT NOT NULL,
    zone TEXT NOT NULL,
    locations TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (tenant_id, zone)
);
`

const schemaVerdicts = `
CREATE TABLE IF NOT EXISTS verdicts (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    request_id TEXT,
    item_no INTEGER NOT NULL,
    fare_id TEXT,
    status TEXT NOT NULL,
    applied INTEGER NOT NULL DEFAULT 0,
    timestamp TIMESTAMP NOT NULL,
    body TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_verdicts_tenant ON verdicts(tenant_id);
CREATE INDEX IF NOT EXISTS idx_verdicts_request ON verdicts(tenant_id, request_id);
CREATE INDEX IF NOT EXISTS idx_verdicts_status ON verdicts(tenant_id, status);
CREATE INDEX IF NOT EXISTS idx_verdicts_timestamp ON verdicts(tenant_id, timestamp);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaExceptionItems,
		schemaRBDCabins,
		schemaTSIDefinitions,
		schemaZones,
		schemaVerdicts,
	}
}
