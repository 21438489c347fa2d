package installer_test

import (
	"context"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"privacy-guard/internal/models"
	"privacy-guard/internal/services/installer"
	"privacy-guard/internal/testutil"
)

func TestGenerateSampleDataCounts(t *testing.T) {
	c := qt.New(t)
	db := testutil.NewTestDB(t)

	c.Assert(installer.GenerateSampleData(db, nil, fixedNow), qt.IsNil)

	for model, n := range map[interface{}]int64{
		&models.User{}:          1,
		&models.DataType{}:      5,
		&models.ConsentRecord{}: 5,
		&models.DsarRequest{}:   4,
		&models.PrivacyNotice{}: 3,
		&models.Incident{}:      3,
		&models.Domain{}:        2,
	} {
		var flagged int64
		c.Assert(db.Model(model).Where("is_sample = ?", true).Count(&flagged).Error, qt.IsNil)
		c.Assert(flagged, qt.Equals, n, qt.Commentf("%T", model))
	}

	var owner models.User
	c.Assert(db.First(&owner).Error, qt.IsNil)
	c.Assert(owner.Email, qt.Equals, "sample.owner@example.com")
	c.Assert(owner.IsSample, qt.IsTrue)

	var types []models.DataType
	c.Assert(db.Find(&types).Error, qt.IsNil)
	for _, dt := range types {
		c.Assert(dt.Name, qt.Matches, "Sample .*")
		c.Assert(dt.OwnerID, qt.IsNotNil)
		c.Assert(*dt.OwnerID, qt.Equals, owner.ID)
	}
}

func TestGenerateSampleDataDsarDueDates(t *testing.T) {
	c := qt.New(t)
	db := testutil.NewTestDB(t)

	c.Assert(installer.GenerateSampleData(db, nil, fixedNow), qt.IsNil)

	var dsars []models.DsarRequest
	c.Assert(db.Find(&dsars).Error, qt.IsNil)
	c.Assert(dsars, qt.HasLen, 4)
	for _, d := range dsars {
		offset := d.DueDate.Sub(fixedNow)
		c.Assert(offset, qt.Equals, installer.DsarResponseWindow, qt.Commentf("due %s", d.DueDate))
		c.Assert(d.RequesterEmail, qt.Matches, ".*@example\\.com")
	}
}

func TestGenerateSampleDataUsesInstallTime(t *testing.T) {
	c := qt.New(t)
	svc, db := newService(t)

	before := time.Now()
	_, err := installer.New(db).PerformInstallation(context.Background(), installer.Options{IncludeSampleData: true})
	c.Assert(err, qt.IsNil)

	var dsar models.DsarRequest
	c.Assert(db.First(&dsar).Error, qt.IsNil)
	offset := dsar.DueDate.Sub(before)
	c.Assert(offset >= installer.DsarResponseWindow, qt.IsTrue, qt.Commentf("offset %s", offset))
	c.Assert(offset < installer.DsarResponseWindow+time.Minute, qt.IsTrue, qt.Commentf("offset %s", offset))
	c.Assert(svc.CheckStatus(context.Background()).SampleDataExists, qt.IsTrue)
}

func TestGenerateSampleDataWithAdmin(t *testing.T) {
	c := qt.New(t)
	db := testutil.NewTestDB(t)

	admin := &installer.AdminUser{Email: "dpo@acme.test", FirstName: "Dana", LastName: "Protector"}
	c.Assert(installer.GenerateSampleData(db, admin, fixedNow), qt.IsNil)

	var user models.User
	c.Assert(db.Where("email = ?", "dpo@acme.test").First(&user).Error, qt.IsNil)
	c.Assert(user.IsSample, qt.IsFalse)
	c.Assert(user.Role, qt.Equals, models.RoleAdmin)

	var incidents []models.Incident
	c.Assert(db.Find(&incidents).Error, qt.IsNil)
	c.Assert(incidents, qt.HasLen, 3)
	for _, inc := range incidents {
		c.Assert(*inc.ReportedByID, qt.Equals, user.ID)
	}
}

func TestGenerateSampleDataAdminUpsertKeepsIDAndRole(t *testing.T) {
	c := qt.New(t)
	db := testutil.NewTestDB(t)

	existing := models.User{
		Email:     "dpo@acme.test",
		FirstName: "Old",
		LastName:  "Name",
		Role:      models.RoleUser,
	}
	c.Assert(db.Create(&existing).Error, qt.IsNil)

	admin := &installer.AdminUser{Email: "dpo@acme.test", FirstName: "Dana", LastName: "Protector"}
	c.Assert(installer.GenerateSampleData(db, admin, fixedNow), qt.IsNil)

	var user models.User
	c.Assert(db.Where("email = ?", "dpo@acme.test").First(&user).Error, qt.IsNil)
	c.Assert(user.ID, qt.Equals, existing.ID)
	c.Assert(user.Role, qt.Equals, models.RoleUser)
	c.Assert(user.FirstName, qt.Equals, "Dana")
	c.Assert(user.LastName, qt.Equals, "Protector")
	c.Assert(testutil.Count(t, db, &models.User{}), qt.Equals, int64(1))

	var domains []models.Domain
	c.Assert(db.Find(&domains).Error, qt.IsNil)
	for _, d := range domains {
		c.Assert(*d.OwnerID, qt.Equals, existing.ID)
	}
}
