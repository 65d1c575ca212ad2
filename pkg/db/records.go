package db

import "fmt"

// Record is the id/value projection of a base, surface or variant row,
// as consumed by the merge engine.
type Record struct {
	ID    int64
	Value string
}

func (db *DB) listRecords(query string) ([]Record, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Value); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ListBases returns all bases ordered by id ascending. The ordering is
// what makes merge keeper selection deterministic.
func (db *DB) ListBases() ([]Record, error) {
	return db.listRecords("SELECT base_id, value FROM bases ORDER BY base_id ASC")
}

// ListSurfaces returns all surfaces ordered by id ascending.
func (db *DB) ListSurfaces() ([]Record, error) {
	return db.listRecords("SELECT surface_id, value FROM surfaces ORDER BY surface_id ASC")
}

// ListVariants returns all variants ordered by id ascending.
func (db *DB) ListVariants() ([]Record, error) {
	return db.listRecords("SELECT variant_id, value FROM variants ORDER BY variant_id ASC")
}

// RenameBase rewrites a base's value in place.
func (db *DB) RenameBase(id int64, value string) error {
	if _, err := db.Exec("UPDATE bases SET value = ? WHERE base_id = ?", value, id); err != nil {
		return fmt.Errorf("failed to rename base %d: %w", id, err)
	}
	return nil
}

// RenameSurface rewrites a surface's value in place.
func (db *DB) RenameSurface(id int64, value string) error {
	if _, err := db.Exec("UPDATE surfaces SET value = ? WHERE surface_id = ?", value, id); err != nil {
		return fmt.Errorf("failed to rename surface %d: %w", id, err)
	}
	return nil
}

// RenameVariant rewrites a variant's value in place.
func (db *DB) RenameVariant(id int64, value string) error {
	if _, err := db.Exec("UPDATE variants SET value = ? WHERE variant_id = ?", value, id); err != nil {
		return fmt.Errorf("failed to rename variant %d: %w", id, err)
	}
	return nil
}

// RepointSurfacesToBase moves every surface under fromID to toID.
func (db *DB) RepointSurfacesToBase(fromID, toID int64) error {
	_, err := db.Exec("UPDATE surfaces SET base_id = ? WHERE base_id = ?", toID, fromID)
	if err != nil {
		return fmt.Errorf("failed to repoint surfaces from base %d to %d: %w", fromID, toID, err)
	}
	return nil
}

// RepointSurfaceLinks re-attaches every variant linked to surface
// fromID onto surface toID, then removes fromID's own link rows.
// Links the keeper already has are left as-is (pair key).
func (db *DB) RepointSurfaceLinks(fromID, toID int64) error {
	_, err := db.Exec(`
		INSERT OR IGNORE INTO surface_variants (surface_id, variant_id)
		SELECT ?, variant_id FROM surface_variants WHERE surface_id = ?
	`, toID, fromID)
	if err != nil {
		return fmt.Errorf("failed to copy links from surface %d: %w", fromID, err)
	}

	_, err = db.Exec("DELETE FROM surface_variants WHERE surface_id = ?", fromID)
	if err != nil {
		return fmt.Errorf("failed to delete links of surface %d: %w", fromID, err)
	}
	return nil
}

// RepointVariantLinks re-attaches every surface linked to variant
// fromID onto variant toID, then removes fromID's own link rows.
func (db *DB) RepointVariantLinks(fromID, toID int64) error {
	_, err := db.Exec(`
		INSERT OR IGNORE INTO surface_variants (surface_id, variant_id)
		SELECT surface_id, ? FROM surface_variants WHERE variant_id = ?
	`, toID, fromID)
	if err != nil {
		return fmt.Errorf("failed to copy links from variant %d: %w", fromID, err)
	}

	_, err = db.Exec("DELETE FROM surface_variants WHERE variant_id = ?", fromID)
	if err != nil {
		return fmt.Errorf("failed to delete links of variant %d: %w", fromID, err)
	}
	return nil
}

// DeleteBase removes a base row. Callers must repoint its surfaces
// first or the FK constraint fails.
func (db *DB) DeleteBase(id int64) error {
	if _, err := db.Exec("DELETE FROM bases WHERE base_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete base %d: %w", id, err)
	}
	return nil
}

// DeleteSurface removes a surface row and any link rows still
// referencing it.
func (db *DB) DeleteSurface(id int64) error {
	if _, err := db.Exec("DELETE FROM surface_variants WHERE surface_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete links of surface %d: %w", id, err)
	}
	if _, err := db.Exec("DELETE FROM surfaces WHERE surface_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete surface %d: %w", id, err)
	}
	return nil
}

// DeleteVariant removes a variant row and any link rows still
// referencing it.
func (db *DB) DeleteVariant(id int64) error {
	if _, err := db.Exec("DELETE FROM surface_variants WHERE variant_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete links of variant %d: %w", id, err)
	}
	if _, err := db.Exec("DELETE FROM variants WHERE variant_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete variant %d: %w", id, err)
	}
	return nil
}
