package service

import (
	"errors"

	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/internal/app/repository"
	"github.com/vastrakart/vastrakart-backend/pkg/logger"
	"github.com/vastrakart/vastrakart-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrAddressNotFound = errors.New("address not found")
	ErrInvalidPincode  = errors.New("invalid pincode")
	ErrInvalidMobile   = errors.New("invalid mobile number")
)

type AddressService interface {
	GetUserAddresses(userID uint) ([]model.Address, error)
	GetAddress(userID, addressID uint) (*model.Address, error)
	GetPrimaryAddress(userID uint) (*model.Address, error)
	CreateAddress(userID uint, address *model.Address) error
	UpdateAddress(userID, addressID uint, updated *model.Address) error
	DeleteAddress(userID, addressID uint) error
	MakePrimary(userID, addressID uint) error
}

type addressService struct {
	addressRepo repository.AddressRepository
}

func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{addressRepo: addressRepo}
}

func (s *addressService) GetUserAddresses(userID uint) ([]model.Address, error) {
	logger.Debug("Fetching user addresses", map[string]interface{}{
		"user_id": userID,
	})

	addresses, err := s.addressRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("User addresses fetched successfully", map[string]interface{}{
		"user_id": userID,
		"count":   len(addresses),
	})
	return addresses, nil
}

func (s *addressService) GetAddress(userID, addressID uint) (*model.Address, error) {
	return s.ownedAddress(userID, addressID)
}

// GetPrimaryAddress returns the user's default delivery address, or
// ErrAddressNotFound when the user has none marked primary.
func (s *addressService) GetPrimaryAddress(userID uint) (*model.Address, error) {
	address, err := s.addressRepo.FindPrimaryByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	return address, nil
}

func (s *addressService) CreateAddress(userID uint, address *model.Address) error {
	logger.Info("Creating address", map[string]interface{}{
		"user_id": userID,
		"pincode": address.Pincode,
	})

	if err := validateAddress(address); err != nil {
		logger.Warn("Address validation failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return err
	}

	address.UserID = userID

	// First address becomes primary automatically
	existing, err := s.addressRepo.FindByUserID(userID)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		address.IsPrimary = true
	} else if address.IsPrimary {
		if err := s.addressRepo.ClearPrimary(userID); err != nil {
			return err
		}
	}

	if err := s.addressRepo.Create(address); err != nil {
		logger.Error("Failed to create address", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	logger.Info("Address created successfully", map[string]interface{}{
		"address_id": address.ID,
		"user_id":    userID,
		"is_primary": address.IsPrimary,
	})
	return nil
}

func (s *addressService) UpdateAddress(userID, addressID uint, updated *model.Address) error {
	logger.Info("Updating address", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})

	if err := validateAddress(updated); err != nil {
		logger.Warn("Address validation failed", map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
			"error":      err.Error(),
		})
		return err
	}

	address, err := s.ownedAddress(userID, addressID)
	if err != nil {
		return err
	}

	address.ReceiverName = updated.ReceiverName
	address.ReceiverMobile = updated.ReceiverMobile
	address.HouseNo = updated.HouseNo
	address.Area = updated.Area
	address.Landmark = updated.Landmark
	address.City = updated.City
	address.State = updated.State
	address.Pincode = updated.Pincode
	address.AddressType = updated.AddressType

	if err := s.addressRepo.Update(address); err != nil {
		logger.Error("Failed to update address", err, map[string]interface{}{
			"address_id": addressID,
		})
		return err
	}

	logger.Info("Address updated successfully", map[string]interface{}{
		"address_id": addressID,
	})
	return nil
}

func (s *addressService) DeleteAddress(userID, addressID uint) error {
	logger.Info("Deleting address", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})

	address, err := s.ownedAddress(userID, addressID)
	if err != nil {
		return err
	}

	if err := s.addressRepo.Delete(addressID); err != nil {
		logger.Error("Failed to delete address", err, map[string]interface{}{
			"address_id": addressID,
		})
		return err
	}

	// Promote another address so the user keeps a default destination
	if address.IsPrimary {
		remaining, err := s.addressRepo.FindByUserID(userID)
		if err != nil {
			return err
		}
		if len(remaining) > 0 {
			remaining[0].IsPrimary = true
			if err := s.addressRepo.Update(&remaining[0]); err != nil {
				return err
			}
		}
	}

	logger.Info("Address deleted successfully", map[string]interface{}{
		"address_id": addressID,
	})
	return nil
}

// MakePrimary designates one address as the default delivery destination.
// At most one address per user carries the primary flag.
func (s *addressService) MakePrimary(userID, addressID uint) error {
	logger.Info("Making address primary", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})

	address, err := s.ownedAddress(userID, addressID)
	if err != nil {
		return err
	}

	if address.IsPrimary {
		return nil
	}

	if err := s.addressRepo.ClearPrimary(userID); err != nil {
		return err
	}

	address.IsPrimary = true
	if err := s.addressRepo.Update(address); err != nil {
		logger.Error("Failed to set primary address", err, map[string]interface{}{
			"address_id": addressID,
		})
		return err
	}

	logger.Info("Address set as primary", map[string]interface{}{
		"address_id": addressID,
		"user_id":    userID,
	})
	return nil
}

func (s *addressService) ownedAddress(userID, addressID uint) (*model.Address, error) {
	address, err := s.addressRepo.FindByID(addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	if address.UserID != userID {
		logger.Warn("Address access denied: ownership mismatch", map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
			"owner_id":   address.UserID,
		})
		return nil, ErrAddressNotFound
	}
	return address, nil
}

func validateAddress(address *model.Address) error {
	if !util.IsValidPincode(address.Pincode) {
		return ErrInvalidPincode
	}
	if !util.IsValidMobile(address.ReceiverMobile) {
		return ErrInvalidMobile
	}
	return nil
}
