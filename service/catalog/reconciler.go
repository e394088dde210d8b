package catalog

import (
	catalogEntity "toolpick.GO/model/entity/catalog"
	catalogRepo "toolpick.GO/model/repository/catalog"
	"toolpick.GO/service/importer"
)

// Resolution says what to do with one conflicting part.
type Resolution string

const (
	// ResolutionKeep leaves the catalog row as it is.
	ResolutionKeep Resolution = "keep"
	// ResolutionUpdate overwrites the catalog row with the imported values.
	ResolutionUpdate Resolution = "update"
)

// PartConflict is one part whose imported description or location differs
// from the catalog. Missing values compare as empty strings on both sides.
type PartConflict struct {
	PartNumber          string `json:"part_number"`
	ImportedDescription string `json:"imported_description"`
	CatalogDescription  string `json:"catalog_description"`
	ImportedLocation    string `json:"imported_location"`
	CatalogLocation     string `json:"catalog_location"`
}

// Reconciler compares imported line items against the parts catalog and
// applies the chosen resolutions.
type Reconciler struct {
	repo *catalogRepo.CatalogRepository
}

func NewReconciler(repo *catalogRepo.CatalogRepository) *Reconciler {
	return &Reconciler{repo: repo}
}

// CheckForConflicts returns one conflict per imported part that exists in
// the catalog with a different description or location. Parts absent from
// the catalog never conflict.
func (r *Reconciler) CheckForConflicts(items []importer.ImportedLineItem, catalog map[string]catalogEntity.PartsCatalogItem) []PartConflict {
	var conflicts []PartConflict
	for _, item := range items {
		existing, ok := catalog[item.PartNumber]
		if !ok {
			continue
		}
		if item.Description == existing.Description && item.Location == existing.DefaultLocation {
			continue
		}
		conflicts = append(conflicts, PartConflict{
			PartNumber:          item.PartNumber,
			ImportedDescription: item.Description,
			CatalogDescription:  existing.Description,
			ImportedLocation:    item.Location,
			CatalogLocation:     existing.DefaultLocation,
		})
	}
	return conflicts
}

// ApplyResolutions executes the per-part decisions. A part with no entry in
// resolutions keeps its catalog values.
func (r *Reconciler) ApplyResolutions(conflicts []PartConflict, resolutions map[string]Resolution) error {
	for _, c := range conflicts {
		if resolutions[c.PartNumber] != ResolutionUpdate {
			continue
		}
		if err := r.repo.ApplyUpdate(c.PartNumber, c.ImportedDescription, c.ImportedLocation); err != nil {
			return err
		}
	}
	return nil
}

// SaveNewParts adds imported parts missing from the catalog, skipping those
// already present. Returns how many were created.
func (r *Reconciler) SaveNewParts(items []importer.ImportedLineItem, catalog map[string]catalogEntity.PartsCatalogItem) (int, error) {
	seen := make(map[string]bool, len(items))
	var newParts []catalogEntity.PartsCatalogItem
	for _, item := range items {
		if item.PartNumber == "" || seen[item.PartNumber] {
			continue
		}
		seen[item.PartNumber] = true
		if _, exists := catalog[item.PartNumber]; exists {
			continue
		}
		newParts = append(newParts, catalogEntity.PartsCatalogItem{
			PartNumber:      item.PartNumber,
			Description:     item.Description,
			DefaultLocation: item.Location,
		})
	}
	return r.repo.UpsertNew(newParts)
}
