package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quoteflow-backend/shared/database/models"
)

// EntityRef identifies a root entity through the (kind, id) tagged union used
// by polymorphic relations.
type EntityRef struct {
	Kind string    `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

// rootEntity is a root record resolved for a transfer: its ownership fields
// plus the loaded model for kind-specific rules.
type rootEntity struct {
	ref         EntityRef
	ownerID     uuid.UUID
	salesUnitID *uuid.UUID
	protected   bool
	hasUnit     bool
	model       interface{}
}

// entityDescriptor declares how one entity kind participates in ownership
// transfers: how to load it, which table holds it, and its cascade rules.
type entityDescriptor struct {
	kind     string
	newModel func() interface{}
	load     func(tx *gorm.DB, id uuid.UUID) (*rootEntity, error)
	rules    []cascadeRule
}

// entityRegistry maps entity kinds to their descriptors. Registration order
// is fixed; cascade rules run in the order declared per descriptor.
var entityRegistry = map[string]*entityDescriptor{
	models.EntityKindCompany: {
		kind:     models.EntityKindCompany,
		newModel: func() interface{} { return &models.Company{} },
		load:     loadCompany,
		rules:    companyCascadeRules,
	},
	models.EntityKindOpportunity: {
		kind:     models.EntityKindOpportunity,
		newModel: func() interface{} { return &models.Opportunity{} },
		load:     loadOpportunity,
		rules:    opportunityCascadeRules,
	},
	models.EntityKindAsset: {
		kind:     models.EntityKindAsset,
		newModel: func() interface{} { return &models.Asset{} },
		load:     loadAsset,
		rules:    assetCascadeRules,
	},
	models.EntityKindQuote: {
		kind:     models.EntityKindQuote,
		newModel: func() interface{} { return &models.WorldwideQuote{} },
		load:     loadQuote,
		rules:    quoteCascadeRules,
	},
}

// lookupEntityKind resolves a kind to its descriptor
func lookupEntityKind(kind string) (*entityDescriptor, bool) {
	desc, ok := entityRegistry[kind]
	return desc, ok
}

// lockForUpdate takes a row-level lock on postgres so concurrent transfers on
// the same root serialize. Other dialects (the test database) have no FOR
// UPDATE support; their single-writer model covers it.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func loadCompany(tx *gorm.DB, id uuid.UUID) (*rootEntity, error) {
	var company models.Company
	if err := lockForUpdate(tx).First(&company, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rootEntity{
		ref:         EntityRef{Kind: models.EntityKindCompany, ID: company.ID},
		ownerID:     company.OwnerID,
		salesUnitID: company.SalesUnitID,
		protected:   company.IsSystem(),
		hasUnit:     true,
		model:       &company,
	}, nil
}

func loadOpportunity(tx *gorm.DB, id uuid.UUID) (*rootEntity, error) {
	var opp models.Opportunity
	if err := lockForUpdate(tx).First(&opp, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rootEntity{
		ref:         EntityRef{Kind: models.EntityKindOpportunity, ID: opp.ID},
		ownerID:     opp.OwnerID,
		salesUnitID: opp.SalesUnitID,
		hasUnit:     true,
		model:       &opp,
	}, nil
}

func loadAsset(tx *gorm.DB, id uuid.UUID) (*rootEntity, error) {
	var asset models.Asset
	if err := lockForUpdate(tx).First(&asset, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rootEntity{
		ref:     EntityRef{Kind: models.EntityKindAsset, ID: asset.ID},
		ownerID: asset.OwnerID,
		model:   &asset,
	}, nil
}

func loadQuote(tx *gorm.DB, id uuid.UUID) (*rootEntity, error) {
	var quote models.WorldwideQuote
	if err := lockForUpdate(tx).First(&quote, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rootEntity{
		ref:         EntityRef{Kind: models.EntityKindQuote, ID: quote.ID},
		ownerID:     quote.OwnerID,
		salesUnitID: quote.SalesUnitID,
		hasUnit:     true,
		model:       &quote,
	}, nil
}
