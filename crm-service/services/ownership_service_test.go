package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"quoteflow-backend/shared/database"
	"quoteflow-backend/shared/database/models"
	"quoteflow-backend/shared/database/models/crm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(database.MigratedModels()...))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, status string) *models.User {
	t.Helper()

	user := &models.User{
		Email:  fmt.Sprintf("%s@example.com", uuid.New()),
		Status: status,
		Role:   "sales",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestUnit(t *testing.T, db *gorm.DB, name string) *models.SalesUnit {
	t.Helper()

	unit := &models.SalesUnit{Name: name, Slug: fmt.Sprintf("%s-%s", name, uuid.New())}
	require.NoError(t, db.Create(unit).Error)
	return unit
}

func createTestCompany(t *testing.T, db *gorm.DB, owner *models.User, unit *models.SalesUnit) *models.Company {
	t.Helper()

	company := &models.Company{
		Name:    "Test Company",
		OwnerID: owner.ID,
	}
	if unit != nil {
		company.SalesUnitID = &unit.ID
	}
	require.NoError(t, db.Create(company).Error)
	return company
}

func TestTransferCompanyCascades(t *testing.T) {
	db := setupTestDB(t)
	oldOwner := createTestUser(t, db, models.UserStatusActive)
	newOwner := createTestUser(t, db, models.UserStatusActive)
	oldUnit := createTestUnit(t, db, "EMEA")
	newUnit := createTestUnit(t, db, "Americas")
	company := createTestCompany(t, db, oldOwner, oldUnit)

	require.NoError(t, db.Create(&crm.Address{CompanyID: company.ID, City: "Berlin", OwnerID: oldOwner.ID}).Error)
	require.NoError(t, db.Create(&crm.Contact{CompanyID: company.ID, FirstName: "Ada", OwnerID: oldOwner.ID}).Error)
	require.NoError(t, db.Create(&crm.Note{EntityKind: models.EntityKindCompany, EntityID: company.ID, Text: "note", OwnerID: oldOwner.ID}).Error)
	require.NoError(t, db.Create(&crm.Task{EntityKind: models.EntityKindCompany, EntityID: company.ID, Name: "task", OwnerID: oldOwner.ID}).Error)
	require.NoError(t, db.Create(&crm.Appointment{EntityKind: models.EntityKindCompany, EntityID: company.ID, Subject: "call", OwnerID: oldOwner.ID}).Error)

	openOpp := &models.Opportunity{Name: "open", Status: models.OpportunityStatusOpen, PrimaryAccountID: &company.ID, OwnerID: oldOwner.ID, SalesUnitID: &oldUnit.ID}
	require.NoError(t, db.Create(openOpp).Error)
	endUserOpp := &models.Opportunity{Name: "end-user", Status: models.OpportunityStatusWon, EndUserID: &company.ID, OwnerID: oldOwner.ID, SalesUnitID: &oldUnit.ID}
	require.NoError(t, db.Create(endUserOpp).Error)
	lostOpp := &models.Opportunity{Name: "lost", Status: models.OpportunityStatusLost, PrimaryAccountID: &company.ID, OwnerID: oldOwner.ID}
	require.NoError(t, db.Create(lostOpp).Error)

	svc := NewOwnershipService(db)
	result, err := svc.Transfer(context.Background(), &TransferRequest{
		EntityKind:            models.EntityKindCompany,
		EntityID:              company.ID,
		NewOwnerID:            newOwner.ID,
		NewSalesUnitID:        &newUnit.ID,
		TransferLinkedRecords: true,
	})
	require.NoError(t, err)

	assert.Equal(t, oldOwner.ID, result.OldOwnerID)
	assert.Equal(t, newOwner.ID, result.NewOwnerID)
	assert.True(t, result.Cascaded)

	var reloaded models.Company
	require.NoError(t, db.First(&reloaded, "id = ?", company.ID).Error)
	assert.Equal(t, newOwner.ID, reloaded.OwnerID)
	require.NotNil(t, reloaded.SalesUnitID)
	assert.Equal(t, newUnit.ID, *reloaded.SalesUnitID)

	assert.Equal(t, int64(1), result.Counts["addresses"])
	assert.Equal(t, int64(1), result.Counts["contacts"])
	assert.Equal(t, int64(1), result.Counts["notes"])
	assert.Equal(t, int64(1), result.Counts["tasks"])
	assert.Equal(t, int64(1), result.Counts["appointments"])
	assert.Equal(t, int64(2), result.Counts["opportunities"])

	var address crm.Address
	require.NoError(t, db.First(&address, "company_id = ?", company.ID).Error)
	assert.Equal(t, newOwner.ID, address.OwnerID)

	var opp models.Opportunity
	require.NoError(t, db.First(&opp, "id = ?", openOpp.ID).Error)
	assert.Equal(t, newOwner.ID, opp.OwnerID)
	require.NotNil(t, opp.SalesUnitID)
	assert.Equal(t, newUnit.ID, *opp.SalesUnitID)

	opp = models.Opportunity{}
	require.NoError(t, db.First(&opp, "id = ?", endUserOpp.ID).Error)
	assert.Equal(t, newOwner.ID, opp.OwnerID)

	// Lost opportunities keep their owner
	opp = models.Opportunity{}
	require.NoError(t, db.First(&opp, "id = ?", lostOpp.ID).Error)
	assert.Equal(t, oldOwner.ID, opp.OwnerID)
}

func TestTransferCompanyWithoutCascade(t *testing.T) {
	db := setupTestDB(t)
	oldOwner := createTestUser(t, db, models.UserStatusActive)
	newOwner := createTestUser(t, db, models.UserStatusActive)
	company := createTestCompany(t, db, oldOwner, nil)

	note := &crm.Note{EntityKind: models.EntityKindCompany, EntityID: company.ID, Text: "stays", OwnerID: oldOwner.ID}
	require.NoError(t, db.Create(note).Error)

	svc := NewOwnershipService(db)
	result, err := svc.Transfer(context.Background(), &TransferRequest{
		EntityKind: models.EntityKindCompany,
		EntityID:   company.ID,
		NewOwnerID: newOwner.ID,
	})
	require.NoError(t, err)
	assert.False(t, result.Cascaded)
	assert.Empty(t, result.Counts)

	var reloaded models.Company
	require.NoError(t, db.First(&reloaded, "id = ?", company.ID).Error)
	assert.Equal(t, newOwner.ID, reloaded.OwnerID)

	var reloadedNote crm.Note
	require.NoError(t, db.First(&reloadedNote, "id = ?", note.ID).Error)
	assert.Equal(t, oldOwner.ID, reloadedNote.OwnerID)
}

func TestTransferKeepsOriginalOwnerAsEditor(t *testing.T) {
	db := setupTestDB(t)
	oldOwner := createTestUser(t, db, models.UserStatusActive)
	newOwner := createTestUser(t, db, models.UserStatusActive)
	company := createTestCompany(t, db, oldOwner, nil)

	svc := NewOwnershipService(db)
	req := &TransferRequest{
		EntityKind:                models.EntityKindCompany,
		EntityID:                  company.ID,
		NewOwnerID:                newOwner.ID,
		KeepOriginalOwnerAsEditor: true,
	}
	_, err := svc.Transfer(context.Background(), req)
	require.NoError(t, err)

	var grants []models.SharingGrant
	require.NoError(t, db.Where("entity_kind = ? AND entity_id = ?", models.EntityKindCompany, company.ID).Find(&grants).Error)
	require.Len(t, grants, 1)
	assert.Equal(t, oldOwner.ID, grants[0].UserID)

	// Repeating the transfer must not duplicate the grant
	_, err = svc.Transfer(context.Background(), req)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.SharingGrant{}).
		Where("entity_kind = ? AND entity_id = ?", models.EntityKindCompany, company.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTransferToCurrentOwnerCreatesNoGrant(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, models.UserStatusActive)
	company := createTestCompany(t, db, owner, nil)

	svc := NewOwnershipService(db)
	result, err := svc.Transfer(context.Background(), &TransferRequest{
		EntityKind:                models.EntityKindCompany,
		EntityID:                  company.ID,
		NewOwnerID:                owner.ID,
		KeepOriginalOwnerAsEditor: true,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Counts)

	var count int64
	require.NoError(t, db.Model(&models.SharingGrant{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTransferIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	oldOwner := createTestUser(t, db, models.UserStatusActive)
	newOwner := createTestUser(t, db, models.UserStatusActive)
	company := createTestCompany(t, db, oldOwner, nil)
	require.NoError(t, db.Create(&crm.Note{EntityKind: models.EntityKindCompany, EntityID: company.ID, Text: "n", OwnerID: oldOwner.ID}).Error)

	svc := NewOwnershipService(db)
	req := &TransferRequest{
		EntityKind:            models.EntityKindCompany,
		EntityID:              company.ID,
		NewOwnerID:            newOwner.ID,
		TransferLinkedRecords: true,
	}

	first, err := svc.Transfer(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Counts["notes"])

	// Second run finds every record already at the target: no writes, no counts
	second, err := svc.Transfer(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, second.Counts)
	assert.Equal(t, newOwner.ID, second.OldOwnerID)
}

func TestTransferProtectedCompany(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, models.UserStatusActive)
	newOwner := createTestUser(t, db, models.UserStatusActive)

	company := &models.Company{
		Name:    "House Account",
		Flags:   models.CompanyFlagSystem,
		OwnerID: owner.ID,
	}
	require.NoError(t, db.Create(company).Error)

	svc := NewOwnershipService(db)
	_, err := svc.Transfer(context.Background(), &TransferRequest{
		EntityKind: models.EntityKindCompany,
		EntityID:   company.ID,
		NewOwnerID: newOwner.ID,
	})
	assert.ErrorIs(t, err, ErrProtectedEntity)

	var reloaded models.Company
	require.NoError(t, db.First(&reloaded, "id = ?", company.ID).Error)
	assert.Equal(t, owner.ID, reloaded.OwnerID)
}

func TestTransferToInvalidOwner(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, models.UserStatusActive)
	inactive := createTestUser(t, db, models.UserStatusInactive)
	company := createTestCompany(t, db, owner, nil)

	svc := NewOwnershipService(db)

	_, err := svc.Transfer(context.Background(), &TransferRequest{
		EntityKind: models.EntityKindCompany,
		EntityID:   company.ID,
		NewOwnerID: inactive.ID,
	})
	assert.ErrorIs(t, err, ErrInvalidOwner)

	_, err = svc.Transfer(context.Background(), &TransferRequest{
		EntityKind: models.EntityKindCompany,
		EntityID:   company.ID,
		NewOwnerID: uuid.New(),
	})
	assert.ErrorIs(t, err, ErrInvalidOwner)
}

func TestTransferUnknownEntity(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, models.UserStatusActive)

	svc := NewOwnershipService(db)

	_, err := svc.Transfer(context.Background(), &TransferRequest{
		EntityKind: models.EntityKindCompany,
		EntityID:   uuid.New(),
		NewOwnerID: owner.ID,
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Transfer(context.Background(), &TransferRequest{
		EntityKind: "mystery",
		EntityID:   uuid.New(),
		NewOwnerID: owner.ID,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransferOpportunityCascade(t *testing.T) {
	db := setupTestDB(t)
	oldOwner := createTestUser(t, db, models.UserStatusActive)
	newOwner := createTestUser(t, db, models.UserStatusActive)
	thirdOwner := createTestUser(t, db, models.UserStatusActive)

	account := createTestCompany(t, db, oldOwner, nil)
	endUser := createTestCompany(t, db, thirdOwner, nil)

	opp := &models.Opportunity{
		Name:             "deal",
		Status:           models.OpportunityStatusOpen,
		PrimaryAccountID: &account.ID,
		EndUserID:        &endUser.ID,
		OwnerID:          oldOwner.ID,
	}
	require.NoError(t, db.Create(opp).Error)

	sibling := &models.Opportunity{
		Name:             "sibling",
		Status:           models.OpportunityStatusOpen,
		PrimaryAccountID: &account.ID,
		OwnerID:          thirdOwner.ID,
	}
	require.NoError(t, db.Create(sibling).Error)
	staleTime := time.Now().Add(-time.Hour).UTC()
	require.NoError(t, db.Model(sibling).Update("updated_at", staleTime).Error)

	require.NoError(t, db.Create(&crm.Note{EntityKind: models.EntityKindOpportunity, EntityID: opp.ID, Text: "n", OwnerID: oldOwner.ID}).Error)
	require.NoError(t, db.Create(&crm.Attachment{
		EntityKind: models.EntityKindOpportunity, EntityID: opp.ID,
		FileName: "f.pdf", OriginalName: "f.pdf", FileSize: 1, MimeType: "application/pdf",
		BucketName: "b", ObjectKey: uuid.NewString(), OwnerID: oldOwner.ID,
	}).Error)

	quote := &models.WorldwideQuote{OpportunityID: opp.ID, OwnerID: oldOwner.ID}
	require.NoError(t, db.Create(quote).Error)

	svc := NewOwnershipService(db)
	result, err := svc.Transfer(context.Background(), &TransferRequest{
		EntityKind:            models.EntityKindOpportunity,
		EntityID:              opp.ID,
		NewOwnerID:            newOwner.ID,
		TransferLinkedRecords: true,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.Counts["notes"])
	assert.Equal(t, int64(1), result.Counts["attachments"])
	// Only the account still held by the outgoing owner follows
	assert.Equal(t, int64(1), result.Counts["accounts"])
	assert.Equal(t, int64(1), result.Counts["opportunities_touched"])

	var reloadedAccount models.Company
	require.NoError(t, db.First(&reloadedAccount, "id = ?", account.ID).Error)
	assert.Equal(t, newOwner.ID, reloadedAccount.OwnerID)

	var reloadedEndUser models.Company
	require.NoError(t, db.First(&reloadedEndUser, "id = ?", endUser.ID).Error)
	assert.Equal(t, thirdOwner.ID, reloadedEndUser.OwnerID)

	// Sibling keeps its owner but gets a fresh updated_at for sync consumers
	var reloadedSibling models.Opportunity
	require.NoError(t, db.First(&reloadedSibling, "id = ?", sibling.ID).Error)
	assert.Equal(t, thirdOwner.ID, reloadedSibling.OwnerID)
	assert.True(t, reloadedSibling.UpdatedAt.After(staleTime))

	// Attached quote stays put unless explicitly requested
	var reloadedQuote models.WorldwideQuote
	require.NoError(t, db.First(&reloadedQuote, "id = ?", quote.ID).Error)
	assert.Equal(t, oldOwner.ID, reloadedQuote.OwnerID)
}

func TestTransferOpportunityTouchesEndUserSiblings(t *testing.T) {
	db := setupTestDB(t)
	oldOwner := createTestUser(t, db, models.UserStatusActive)
	newOwner := createTestUser(t, db, models.UserStatusActive)
	thirdOwner := createTestUser(t, db, models.UserStatusActive)

	endUser := createTestCompany(t, db, thirdOwner, nil)

	opp := &models.Opportunity{
		Name:      "deal",
		Status:    models.OpportunityStatusOpen,
		EndUserID: &endUser.ID,
		OwnerID:   oldOwner.ID,
	}
	require.NoError(t, db.Create(opp).Error)

	// Sibling shares the company through end_user_id only
	sibling := &models.Opportunity{
		Name:      "sibling",
		Status:    models.OpportunityStatusOpen,
		EndUserID: &endUser.ID,
		OwnerID:   thirdOwner.ID,
	}
	require.NoError(t, db.Create(sibling).Error)
	staleTime := time.Now().Add(-time.Hour).UTC()
	require.NoError(t, db.Model(sibling).Update("updated_at", staleTime).Error)

	unrelated := &models.Opportunity{Name: "unrelated", Status: models.OpportunityStatusOpen, OwnerID: thirdOwner.ID}
	require.NoError(t, db.Create(unrelated).Error)
	require.NoError(t, db.Model(unrelated).Update("updated_at", staleTime).Error)

	svc := NewOwnershipService(db)
	result, err := svc.Transfer(context.Background(), &TransferRequest{
		EntityKind:            models.EntityKindOpportunity,
		EntityID:              opp.ID,
		NewOwnerID:            newOwner.ID,
		TransferLinkedRecords: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Counts["opportunities_touched"])

	var reloadedSibling models.Opportunity
	require.NoError(t, db.First(&reloadedSibling, "id = ?", sibling.ID).Error)
	assert.Equal(t, thirdOwner.ID, reloadedSibling.OwnerID)
	assert.True(t, reloadedSibling.UpdatedAt.After(staleTime))

	var reloadedUnrelated models.Opportunity
	require.NoError(t, db.First(&reloadedUnrelated, "id = ?", unrelated.ID).Error)
	assert.WithinDuration(t, staleTime, reloadedUnrelated.UpdatedAt, time.Second)
}

func TestTransferOpportunityWithAttachedQuote(t *testing.T) {
	db := setupTestDB(t)
	oldOwner := createTestUser(t, db, models.UserStatusActive)
	newOwner := createTestUser(t, db, models.UserStatusActive)

	opp := &models.Opportunity{Name: "deal", OwnerID: oldOwner.ID}
	require.NoError(t, db.Create(opp).Error)
	quote := &models.WorldwideQuote{OpportunityID: opp.ID, OwnerID: oldOwner.ID}
	require.NoError(t, db.Create(quote).Error)

	svc := NewOwnershipService(db)
	result, err := svc.Transfer(context.Background(), &TransferRequest{
		EntityKind:            models.EntityKindOpportunity,
		EntityID:              opp.ID,
		NewOwnerID:            newOwner.ID,
		TransferLinkedRecords: true,
		TransferAttachedQuote: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Counts["quote"])

	var reloadedQuote models.WorldwideQuote
	require.NoError(t, db.First(&reloadedQuote, "id = ?", quote.ID).Error)
	assert.Equal(t, newOwner.ID, reloadedQuote.OwnerID)
}

func TestTransferAssetCascadesAddress(t *testing.T) {
	db := setupTestDB(t)
	oldOwner := createTestUser(t, db, models.UserStatusActive)
	newOwner := createTestUser(t, db, models.UserStatusActive)
	company := createTestCompany(t, db, oldOwner, nil)

	address := &crm.Address{CompanyID: company.ID, AddressType: crm.AddressTypeMachine, OwnerID: oldOwner.ID}
	require.NoError(t, db.Create(address).Error)

	asset := &models.Asset{
		SerialNumber: "SN-1",
		CompanyID:    &company.ID,
		AddressID:    &address.ID,
		OwnerID:      oldOwner.ID,
	}
	require.NoError(t, db.Create(asset).Error)

	svc := NewOwnershipService(db)
	result, err := svc.Transfer(context.Background(), &TransferRequest{
		EntityKind:            models.EntityKindAsset,
		EntityID:              asset.ID,
		NewOwnerID:            newOwner.ID,
		TransferLinkedRecords: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Counts["address"])

	var reloadedAsset models.Asset
	require.NoError(t, db.First(&reloadedAsset, "id = ?", asset.ID).Error)
	assert.Equal(t, newOwner.ID, reloadedAsset.OwnerID)

	var reloadedAddress crm.Address
	require.NoError(t, db.First(&reloadedAddress, "id = ?", address.ID).Error)
	assert.Equal(t, newOwner.ID, reloadedAddress.OwnerID)
}

func createQuoteWithVersions(t *testing.T, db *gorm.DB, owner *models.User, sequences int) (*models.WorldwideQuote, []models.QuoteVersion) {
	t.Helper()

	opp := &models.Opportunity{Name: "deal", OwnerID: owner.ID}
	require.NoError(t, db.Create(opp).Error)

	quote := &models.WorldwideQuote{OpportunityID: opp.ID, OwnerID: owner.ID}
	require.NoError(t, db.Create(quote).Error)

	versions := make([]models.QuoteVersion, 0, sequences)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < sequences; i++ {
		v := models.QuoteVersion{
			QuoteID:   quote.ID,
			OwnerID:   owner.ID,
			Sequence:  i,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&v).Error)
		versions = append(versions, v)
	}
	return quote, versions
}

func TestTransferWholeQuoteMovesVersions(t *testing.T) {
	db := setupTestDB(t)
	oldOwner := createTestUser(t, db, models.UserStatusActive)
	newOwner := createTestUser(t, db, models.UserStatusActive)
	quote, _ := createQuoteWithVersions(t, db, oldOwner, 3)

	require.NoError(t, db.Create(&crm.Note{
		EntityKind: models.EntityKindOpportunity, EntityID: quote.OpportunityID,
		Text: "opp note", OwnerID: oldOwner.ID,
	}).Error)

	svc := NewOwnershipService(db)
	result, err := svc.Transfer(context.Background(), &TransferRequest{
		EntityKind:            models.EntityKindQuote,
		EntityID:              quote.ID,
		NewOwnerID:            newOwner.ID,
		TransferLinkedRecords: true,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), result.Counts["versions"])
	// Quote-level transfers cascade through the parent opportunity's records
	assert.Equal(t, int64(1), result.Counts["opportunity_notes"])

	var versions []models.QuoteVersion
	require.NoError(t, db.Where("quote_id = ?", quote.ID).Order("sequence ASC").Find(&versions).Error)
	require.Len(t, versions, 3)
	for i, v := range versions {
		assert.Equal(t, newOwner.ID, v.OwnerID)
		assert.Equal(t, i, v.Sequence)
	}
}

func TestTransferSingleQuoteVersion(t *testing.T) {
	db := setupTestDB(t)
	oldOwner := createTestUser(t, db, models.UserStatusActive)
	newOwner := createTestUser(t, db, models.UserStatusActive)
	quote, versions := createQuoteWithVersions(t, db, oldOwner, 3)

	// New owner already holds one version of this quote
	existing := models.QuoteVersion{
		QuoteID:   quote.ID,
		OwnerID:   newOwner.ID,
		Sequence:  0,
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}
	require.NoError(t, db.Create(&existing).Error)

	moved := versions[1]

	svc := NewOwnershipService(db)
	result, err := svc.Transfer(context.Background(), &TransferRequest{
		EntityKind:   models.EntityKindQuote,
		EntityID:     quote.ID,
		NewOwnerID:   newOwner.ID,
		VersionScope: VersionScopeVersion,
		VersionID:    &moved.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Counts["versions"])
	assert.False(t, result.Cascaded)

	// The quote itself does not change hands
	var reloadedQuote models.WorldwideQuote
	require.NoError(t, db.First(&reloadedQuote, "id = ?", quote.ID).Error)
	assert.Equal(t, oldOwner.ID, reloadedQuote.OwnerID)

	// The moved version heads the new owner's sequence space
	var reloadedMoved models.QuoteVersion
	require.NoError(t, db.First(&reloadedMoved, "id = ?", moved.ID).Error)
	assert.Equal(t, newOwner.ID, reloadedMoved.OwnerID)
	assert.Equal(t, 0, reloadedMoved.Sequence)

	// Both owners' sequences stay contiguous from zero
	assertContiguousSequences(t, db, quote.ID, oldOwner.ID, 2)
	assertContiguousSequences(t, db, quote.ID, newOwner.ID, 2)
}

func TestTransferVersionConflict(t *testing.T) {
	db := setupTestDB(t)
	oldOwner := createTestUser(t, db, models.UserStatusActive)
	newOwner := createTestUser(t, db, models.UserStatusActive)
	quote, versions := createQuoteWithVersions(t, db, oldOwner, 1)

	root, err := loadQuote(db, quote.ID)
	require.NoError(t, err)

	// Another transfer moved the version between the caller's read and ours
	staleOwner := uuid.New()
	svc := NewOwnershipService(db)
	_, err = svc.transferVersion(db, root, &TransferRequest{
		EntityKind:   models.EntityKindQuote,
		EntityID:     quote.ID,
		NewOwnerID:   newOwner.ID,
		VersionScope: VersionScopeVersion,
		VersionID:    &versions[0].ID,
	}, &staleOwner)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestTransferVersionNotFound(t *testing.T) {
	db := setupTestDB(t)
	oldOwner := createTestUser(t, db, models.UserStatusActive)
	newOwner := createTestUser(t, db, models.UserStatusActive)
	quote, _ := createQuoteWithVersions(t, db, oldOwner, 1)

	svc := NewOwnershipService(db)

	missing := uuid.New()
	_, err := svc.Transfer(context.Background(), &TransferRequest{
		EntityKind:   models.EntityKindQuote,
		EntityID:     quote.ID,
		NewOwnerID:   newOwner.ID,
		VersionScope: VersionScopeVersion,
		VersionID:    &missing,
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Transfer(context.Background(), &TransferRequest{
		EntityKind:   models.EntityKindQuote,
		EntityID:     quote.ID,
		NewOwnerID:   newOwner.ID,
		VersionScope: VersionScopeVersion,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func assertContiguousSequences(t *testing.T, db *gorm.DB, quoteID, ownerID uuid.UUID, expected int) {
	t.Helper()

	var versions []models.QuoteVersion
	require.NoError(t, db.
		Where("quote_id = ? AND owner_id = ?", quoteID, ownerID).
		Order("sequence ASC").
		Find(&versions).Error)
	require.Len(t, versions, expected)
	for i, v := range versions {
		assert.Equal(t, i, v.Sequence, "owner %s sequence gap at %d", ownerID, i)
	}
}

func TestTransferRollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	oldOwner := createTestUser(t, db, models.UserStatusActive)
	newOwner := createTestUser(t, db, models.UserStatusActive)
	company := createTestCompany(t, db, oldOwner, nil)
	require.NoError(t, db.Create(&crm.Note{EntityKind: models.EntityKindCompany, EntityID: company.ID, Text: "n", OwnerID: oldOwner.ID}).Error)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewOwnershipService(db)
	_, err := svc.Transfer(ctx, &TransferRequest{
		EntityKind:            models.EntityKindCompany,
		EntityID:              company.ID,
		NewOwnerID:            newOwner.ID,
		TransferLinkedRecords: true,
	})
	require.Error(t, err)

	// Nothing moved
	var reloaded models.Company
	require.NoError(t, db.First(&reloaded, "id = ?", company.ID).Error)
	assert.Equal(t, oldOwner.ID, reloaded.OwnerID)

	var note crm.Note
	require.NoError(t, db.First(&note, "entity_id = ?", company.ID).Error)
	assert.Equal(t, oldOwner.ID, note.OwnerID)
}
