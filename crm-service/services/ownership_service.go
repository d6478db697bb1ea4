package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"quoteflow-backend/shared/database/models"
)

// Transfer errors
var (
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidOwner    = errors.New("new owner invalid or deactivated")
	ErrProtectedEntity = errors.New("entity is system-protected")
	ErrConflict        = errors.New("concurrent ownership change detected")
)

// Version scopes for quote transfers
const (
	VersionScopeQuote   = "quote"
	VersionScopeVersion = "version"
)

// TransferRequest describes one ownership transfer. The caller is assumed to
// hold the change-ownership capability already; domain invariants (protected
// entities, owner validity) are still enforced here.
type TransferRequest struct {
	EntityKind                string
	EntityID                  uuid.UUID
	NewOwnerID                uuid.UUID
	NewSalesUnitID            *uuid.UUID
	TransferLinkedRecords     bool
	KeepOriginalOwnerAsEditor bool

	// Opportunity only: rewrite the attached quote's owner as well
	TransferAttachedQuote bool

	// WorldwideQuote only: "" / "quote" moves the whole quote and all its
	// versions; "version" moves just VersionID
	VersionScope string
	VersionID    *uuid.UUID

	// ActorID is carried into the emitted event; it plays no part in the
	// decision (authorization happened upstream)
	ActorID uuid.UUID
}

// TransferResult is the committed outcome: the root snapshot plus per-relation
// mutation counts.
type TransferResult struct {
	EntityKind  string           `json:"entity_kind"`
	EntityID    uuid.UUID        `json:"entity_id"`
	OldOwnerID  uuid.UUID        `json:"old_owner_id"`
	NewOwnerID  uuid.UUID        `json:"new_owner_id"`
	SalesUnitID *uuid.UUID       `json:"sales_unit_id,omitempty"`
	Cascaded    bool             `json:"cascaded"`
	Counts      map[string]int64 `json:"counts"`
}

// OwnershipService performs validated, atomic ownership reassignment with
// optional cascade across the entity's linked record graph.
type OwnershipService struct {
	db *gorm.DB
}

// NewOwnershipService creates an ownership service on the given database
func NewOwnershipService(db *gorm.DB) *OwnershipService {
	return &OwnershipService{db: db}
}

// Transfer reassigns ownership of one root entity. Everything — the root
// update, the cascade, version renumbering, the sharing grant — commits as a
// single transaction or not at all. A caller-supplied context deadline aborts
// and rolls back the whole unit.
func (s *OwnershipService) Transfer(ctx context.Context, req *TransferRequest) (*TransferResult, error) {
	desc, ok := lookupEntityKind(req.EntityKind)
	if !ok {
		return nil, ErrNotFound
	}

	// Pre-read for version-scoped transfers: if the version's owner moves
	// between this read and the locked read inside the transaction, another
	// transfer raced us.
	var expectedVersionOwner *uuid.UUID
	if req.EntityKind == models.EntityKindQuote && req.VersionScope == VersionScopeVersion {
		if req.VersionID == nil {
			return nil, ErrNotFound
		}
		var version models.QuoteVersion
		if err := s.db.WithContext(ctx).First(&version, "id = ?", *req.VersionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		expectedVersionOwner = &version.OwnerID
	}

	var result *TransferResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		root, err := desc.load(tx, req.EntityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if root.protected {
			return ErrProtectedEntity
		}

		var newOwner models.User
		if err := tx.First(&newOwner, "id = ?", req.NewOwnerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidOwner
			}
			return err
		}
		if !newOwner.IsActive() {
			return ErrInvalidOwner
		}

		if req.EntityKind == models.EntityKindQuote && req.VersionScope == VersionScopeVersion {
			result, err = s.transferVersion(tx, root, req, expectedVersionOwner)
			return err
		}

		result, err = s.transferRoot(tx, desc, root, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// transferRoot rewrites the root entity's ownership and optionally cascades
// across its linked records.
func (s *OwnershipService) transferRoot(tx *gorm.DB, desc *entityDescriptor, root *rootEntity, req *TransferRequest) (*TransferResult, error) {
	oldOwner := root.ownerID

	updates := map[string]interface{}{"owner_id": req.NewOwnerID}
	if root.hasUnit && req.NewSalesUnitID != nil {
		updates["sales_unit_id"] = *req.NewSalesUnitID
	}

	// Skip the root write when it is already at the target owner and unit;
	// repeated transfers must not dirty already-correct records.
	rootDirty := oldOwner != req.NewOwnerID ||
		(root.hasUnit && req.NewSalesUnitID != nil &&
			(root.salesUnitID == nil || *root.salesUnitID != *req.NewSalesUnitID))

	if rootDirty {
		if err := tx.Model(desc.newModel()).Where("id = ?", root.ref.ID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	counts := make(map[string]int64)
	if req.TransferLinkedRecords {
		var err error
		counts, err = runCascade(tx, desc, root, req, oldOwner)
		if err != nil {
			return nil, err
		}
	}

	// Whole-quote transfers move the version history along and keep each
	// owner's sequence space contiguous.
	if root.ref.Kind == models.EntityKindQuote {
		res := tx.Model(&models.QuoteVersion{}).
			Where("quote_id = ? AND owner_id <> ?", root.ref.ID, req.NewOwnerID).
			Update("owner_id", req.NewOwnerID)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			counts["versions"] = res.RowsAffected
		}
		if err := renumberQuoteVersions(tx, root.ref.ID, nil); err != nil {
			return nil, err
		}
	}

	if req.KeepOriginalOwnerAsEditor && oldOwner != req.NewOwnerID {
		if err := createSharingGrant(tx, root.ref, oldOwner); err != nil {
			return nil, err
		}
	}

	unit := root.salesUnitID
	if root.hasUnit && req.NewSalesUnitID != nil {
		unit = req.NewSalesUnitID
	}

	return &TransferResult{
		EntityKind:  root.ref.Kind,
		EntityID:    root.ref.ID,
		OldOwnerID:  oldOwner,
		NewOwnerID:  req.NewOwnerID,
		SalesUnitID: unit,
		Cascaded:    req.TransferLinkedRecords,
		Counts:      counts,
	}, nil
}

// transferVersion rewrites a single quote version's owner. The moved version
// becomes sequence 0 for the new owner; the new owner's existing versions
// shift to make room and the old owner's remaining versions close the gap.
func (s *OwnershipService) transferVersion(tx *gorm.DB, root *rootEntity, req *TransferRequest, expectedOwner *uuid.UUID) (*TransferResult, error) {
	var version models.QuoteVersion
	if err := tx.First(&version, "id = ? AND quote_id = ?", *req.VersionID, root.ref.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if expectedOwner != nil && version.OwnerID != *expectedOwner {
		return nil, ErrConflict
	}

	oldOwner := version.OwnerID
	counts := make(map[string]int64)

	if oldOwner != req.NewOwnerID {
		if err := tx.Model(&models.QuoteVersion{}).
			Where("id = ?", version.ID).
			Update("owner_id", req.NewOwnerID).Error; err != nil {
			return nil, err
		}
		if err := renumberQuoteVersions(tx, root.ref.ID, &version.ID); err != nil {
			return nil, err
		}
		counts["versions"] = 1
	}

	if req.KeepOriginalOwnerAsEditor && oldOwner != req.NewOwnerID {
		if err := createSharingGrant(tx, root.ref, oldOwner); err != nil {
			return nil, err
		}
	}

	return &TransferResult{
		EntityKind: root.ref.Kind,
		EntityID:   root.ref.ID,
		OldOwnerID: oldOwner,
		NewOwnerID: req.NewOwnerID,
		Cascaded:   false,
		Counts:     counts,
	}, nil
}

// renumberQuoteVersions makes every owner's version sequences contiguous from
// 0 again, preserving prior ordering. When promoted is non-nil, that version
// sorts first within its owner's space (it just changed hands and becomes the
// owner's sequence 0).
func renumberQuoteVersions(tx *gorm.DB, quoteID uuid.UUID, promoted *uuid.UUID) error {
	var versions []models.QuoteVersion
	if err := tx.Where("quote_id = ?", quoteID).
		Order("sequence ASC").Order("created_at ASC").
		Find(&versions).Error; err != nil {
		return err
	}

	next := make(map[uuid.UUID]int)

	// Promoted version claims slot 0 of its owner's space first.
	if promoted != nil {
		for i := range versions {
			if versions[i].ID == *promoted {
				if err := setVersionSequence(tx, &versions[i], 0); err != nil {
					return err
				}
				next[versions[i].OwnerID] = 1
				break
			}
		}
	}

	for i := range versions {
		if promoted != nil && versions[i].ID == *promoted {
			continue
		}
		seq := next[versions[i].OwnerID]
		next[versions[i].OwnerID] = seq + 1
		if err := setVersionSequence(tx, &versions[i], seq); err != nil {
			return err
		}
	}

	return nil
}

func setVersionSequence(tx *gorm.DB, version *models.QuoteVersion, seq int) error {
	if version.Sequence == seq {
		return nil
	}
	return tx.Model(&models.QuoteVersion{}).
		Where("id = ?", version.ID).
		Update("sequence", seq).Error
}

// createSharingGrant idempotently binds the prior owner to the root entity as
// an editor (view + update, no delete, no change-ownership).
func createSharingGrant(tx *gorm.DB, ref EntityRef, userID uuid.UUID) error {
	grant := models.SharingGrant{
		EntityKind: ref.Kind,
		EntityID:   ref.ID,
		UserID:     userID,
	}
	return tx.Where("entity_kind = ? AND entity_id = ? AND user_id = ?", ref.Kind, ref.ID, userID).
		FirstOrCreate(&grant).Error
}
