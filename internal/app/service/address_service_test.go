package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/internal/app/repository"
	"github.com/vastrakart/vastrakart-backend/internal/db"
	"gorm.io/gorm"
)

func setupAddressServiceTest(t *testing.T) (AddressService, *model.User, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	addressService := NewAddressService(repository.NewAddressRepository(testDB))

	user := &model.User{
		Email:        "test@example.com",
		PasswordHash: "hash",
		Name:         "Test User",
	}
	testDB.Create(user)

	return addressService, user, testDB
}

func testAddress() *model.Address {
	return &model.Address{
		ReceiverName:   "Priya Sharma",
		ReceiverMobile: "9876543210",
		HouseNo:        "42",
		Area:           "MG Road",
		City:           "Bengaluru",
		State:          "Karnataka",
		Pincode:        "560001",
		AddressType:    model.AddressTypeHome,
	}
}

func TestAddressService_CreateAddress_FirstBecomesPrimary(t *testing.T) {
	addressService, user, _ := setupAddressServiceTest(t)

	first := testAddress()
	require.NoError(t, addressService.CreateAddress(user.ID, first))
	assert.True(t, first.IsPrimary)

	second := testAddress()
	second.Pincode = "400001"
	require.NoError(t, addressService.CreateAddress(user.ID, second))
	assert.False(t, second.IsPrimary)
}

func TestAddressService_CreateAddress_Validation(t *testing.T) {
	addressService, user, _ := setupAddressServiceTest(t)

	badPin := testAddress()
	badPin.Pincode = "5600"
	assert.ErrorIs(t, addressService.CreateAddress(user.ID, badPin), ErrInvalidPincode)

	badMobile := testAddress()
	badMobile.ReceiverMobile = "12345"
	assert.ErrorIs(t, addressService.CreateAddress(user.ID, badMobile), ErrInvalidMobile)
}

func TestAddressService_MakePrimary_SinglePrimaryInvariant(t *testing.T) {
	addressService, user, _ := setupAddressServiceTest(t)

	first := testAddress()
	require.NoError(t, addressService.CreateAddress(user.ID, first))
	second := testAddress()
	second.Pincode = "400001"
	require.NoError(t, addressService.CreateAddress(user.ID, second))

	require.NoError(t, addressService.MakePrimary(user.ID, second.ID))

	addresses, err := addressService.GetUserAddresses(user.ID)
	require.NoError(t, err)
	require.Len(t, addresses, 2)

	primaryCount := 0
	for _, a := range addresses {
		if a.IsPrimary {
			primaryCount++
			assert.Equal(t, second.ID, a.ID)
		}
	}
	assert.Equal(t, 1, primaryCount)

	primary, err := addressService.GetPrimaryAddress(user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, primary.ID)
}

func TestAddressService_DeletePrimaryPromotesAnother(t *testing.T) {
	addressService, user, _ := setupAddressServiceTest(t)

	first := testAddress()
	require.NoError(t, addressService.CreateAddress(user.ID, first))
	second := testAddress()
	second.Pincode = "400001"
	require.NoError(t, addressService.CreateAddress(user.ID, second))

	require.NoError(t, addressService.DeleteAddress(user.ID, first.ID))

	primary, err := addressService.GetPrimaryAddress(user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, primary.ID)
}

func TestAddressService_GetPrimaryAddress_NoneOnFile(t *testing.T) {
	addressService, user, _ := setupAddressServiceTest(t)

	_, err := addressService.GetPrimaryAddress(user.ID)
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestAddressService_OwnershipEnforced(t *testing.T) {
	addressService, user, testDB := setupAddressServiceTest(t)

	address := testAddress()
	require.NoError(t, addressService.CreateAddress(user.ID, address))

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", Name: "Other"}
	testDB.Create(other)

	_, err := addressService.GetAddress(other.ID, address.ID)
	assert.ErrorIs(t, err, ErrAddressNotFound)

	assert.ErrorIs(t, addressService.DeleteAddress(other.ID, address.ID), ErrAddressNotFound)
	assert.ErrorIs(t, addressService.MakePrimary(other.ID, address.ID), ErrAddressNotFound)
}

func TestAddressService_UpdateAddress(t *testing.T) {
	addressService, user, _ := setupAddressServiceTest(t)

	address := testAddress()
	require.NoError(t, addressService.CreateAddress(user.ID, address))

	updated := testAddress()
	updated.ReceiverName = "Anjali Verma"
	updated.Pincode = "400001"
	require.NoError(t, addressService.UpdateAddress(user.ID, address.ID, updated))

	fetched, err := addressService.GetAddress(user.ID, address.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anjali Verma", fetched.ReceiverName)
	assert.Equal(t, "400001", fetched.Pincode)
	// Primary flag survives an update
	assert.True(t, fetched.IsPrimary)
}
