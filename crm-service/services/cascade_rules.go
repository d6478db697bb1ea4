package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"quoteflow-backend/shared/database/models"
	"quoteflow-backend/shared/database/models/crm"
)

// cascadeRule declares one relation of an entity kind that participates in a
// cascaded ownership change. Rules are data: one generic traversal
// (runCascade) executes them in declared order.
//
// touchOnly rules bump updated_at without rewriting ownership; they exist for
// downstream sync consumers that key off modification timestamps.
type cascadeRule struct {
	relation    string
	rewriteUnit bool
	touchOnly   bool
	// enabled gates the rule on request flags; nil means always on
	enabled func(req *TransferRequest) bool
	// targets scopes the candidate rows; the traversal adds the
	// already-at-target exclusion itself
	targets func(tx *gorm.DB, root *rootEntity, oldOwner uuid.UUID) *gorm.DB
}

// runCascade executes every applicable rule for the root's kind and returns
// per-relation mutation counts. Rows already owned by the new owner are
// skipped entirely: no write, no count.
func runCascade(tx *gorm.DB, desc *entityDescriptor, root *rootEntity, req *TransferRequest, oldOwner uuid.UUID) (map[string]int64, error) {
	counts := make(map[string]int64)

	for _, rule := range desc.rules {
		if rule.enabled != nil && !rule.enabled(req) {
			continue
		}

		q := rule.targets(tx, root, oldOwner)

		if rule.touchOnly {
			res := q.Update("updated_at", time.Now().UTC())
			if res.Error != nil {
				return nil, res.Error
			}
			if res.RowsAffected > 0 {
				counts[rule.relation] = res.RowsAffected
			}
			continue
		}

		updates := map[string]interface{}{"owner_id": req.NewOwnerID}
		if rule.rewriteUnit && req.NewSalesUnitID != nil {
			updates["sales_unit_id"] = *req.NewSalesUnitID
		}

		res := q.Where("owner_id <> ?", req.NewOwnerID).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			counts[rule.relation] = res.RowsAffected
		}
	}

	return counts, nil
}

// polymorphicTargets scopes a polymorphic record table to one parent entity
func polymorphicTargets(model interface{}) func(tx *gorm.DB, root *rootEntity, oldOwner uuid.UUID) *gorm.DB {
	return func(tx *gorm.DB, root *rootEntity, _ uuid.UUID) *gorm.DB {
		return tx.Model(model).Where("entity_kind = ? AND entity_id = ?", root.ref.Kind, root.ref.ID)
	}
}

// onParentOpportunity scopes a polymorphic record table to the quote's parent
// opportunity: quote-level transfers cascade through the opportunity.
func onParentOpportunity(model interface{}) func(tx *gorm.DB, root *rootEntity, oldOwner uuid.UUID) *gorm.DB {
	return func(tx *gorm.DB, root *rootEntity, _ uuid.UUID) *gorm.DB {
		quote := root.model.(*models.WorldwideQuote)
		return tx.Model(model).Where("entity_kind = ? AND entity_id = ?", models.EntityKindOpportunity, quote.OpportunityID)
	}
}

var companyCascadeRules = []cascadeRule{
	{
		relation: "addresses",
		targets: func(tx *gorm.DB, root *rootEntity, _ uuid.UUID) *gorm.DB {
			return tx.Model(&crm.Address{}).Where("company_id = ?", root.ref.ID)
		},
	},
	{
		relation: "contacts",
		targets: func(tx *gorm.DB, root *rootEntity, _ uuid.UUID) *gorm.DB {
			return tx.Model(&crm.Contact{}).Where("company_id = ?", root.ref.ID)
		},
	},
	{relation: "notes", targets: polymorphicTargets(&crm.Note{})},
	{relation: "tasks", targets: polymorphicTargets(&crm.Task{})},
	{relation: "appointments", targets: polymorphicTargets(&crm.Appointment{})},
	{
		// Child opportunities linked as primary account or end user. Lost
		// opportunities keep their owner.
		relation:    "opportunities",
		rewriteUnit: true,
		targets: func(tx *gorm.DB, root *rootEntity, _ uuid.UUID) *gorm.DB {
			return tx.Model(&models.Opportunity{}).
				Where("(primary_account_id = ? OR end_user_id = ?)", root.ref.ID, root.ref.ID).
				Where("status <> ?", models.OpportunityStatusLost)
		},
	},
}

var opportunityCascadeRules = []cascadeRule{
	{relation: "notes", targets: polymorphicTargets(&crm.Note{})},
	{relation: "tasks", targets: polymorphicTargets(&crm.Task{})},
	{relation: "appointments", targets: polymorphicTargets(&crm.Appointment{})},
	{relation: "attachments", targets: polymorphicTargets(&crm.Attachment{})},
	{
		// Linked accounts follow only while still held by the outgoing owner;
		// an account owned by someone unrelated is left alone.
		relation: "accounts",
		targets: func(tx *gorm.DB, root *rootEntity, oldOwner uuid.UUID) *gorm.DB {
			opp := root.model.(*models.Opportunity)
			ids := []uuid.UUID{}
			if opp.PrimaryAccountID != nil {
				ids = append(ids, *opp.PrimaryAccountID)
			}
			if opp.EndUserID != nil {
				ids = append(ids, *opp.EndUserID)
			}
			return tx.Model(&models.Company{}).
				Where("id IN ?", ids).
				Where("owner_id = ?", oldOwner)
		},
	},
	{
		relation: "quote",
		enabled:  func(req *TransferRequest) bool { return req.TransferAttachedQuote },
		targets: func(tx *gorm.DB, root *rootEntity, _ uuid.UUID) *gorm.DB {
			return tx.Model(&models.WorldwideQuote{}).Where("opportunity_id = ?", root.ref.ID)
		},
	},
	{
		// Sibling opportunities sharing any linked company (as primary
		// account or end user) get their updated_at bumped for downstream
		// cache/search sync; owner stays put.
		relation:  "opportunities_touched",
		touchOnly: true,
		targets: func(tx *gorm.DB, root *rootEntity, _ uuid.UUID) *gorm.DB {
			opp := root.model.(*models.Opportunity)
			ids := []uuid.UUID{}
			if opp.PrimaryAccountID != nil {
				ids = append(ids, *opp.PrimaryAccountID)
			}
			if opp.EndUserID != nil {
				ids = append(ids, *opp.EndUserID)
			}
			q := tx.Model(&models.Opportunity{}).Where("id <> ?", root.ref.ID)
			if len(ids) == 0 {
				// no linked company, no siblings
				return q.Where("1 = 0")
			}
			return q.Where("primary_account_id IN ? OR end_user_id IN ?", ids, ids)
		},
	},
}

var assetCascadeRules = []cascadeRule{
	{
		relation: "address",
		targets: func(tx *gorm.DB, root *rootEntity, _ uuid.UUID) *gorm.DB {
			asset := root.model.(*models.Asset)
			if asset.AddressID == nil {
				return tx.Model(&crm.Address{}).Where("1 = 0")
			}
			return tx.Model(&crm.Address{}).Where("id = ?", *asset.AddressID)
		},
	},
}

var quoteCascadeRules = []cascadeRule{
	{relation: "opportunity_notes", targets: onParentOpportunity(&crm.Note{})},
	{relation: "opportunity_tasks", targets: onParentOpportunity(&crm.Task{})},
	{relation: "opportunity_appointments", targets: onParentOpportunity(&crm.Appointment{})},
	{relation: "opportunity_attachments", targets: onParentOpportunity(&crm.Attachment{})},
}
