package services

import (
	"context"
	"fmt"
	"strings"

	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/db/repositories"
	"mayday/coordinator/internal/logging"
	"mayday/coordinator/internal/models/dtos"
	gormModels "mayday/coordinator/internal/models/gorm"
	"mayday/coordinator/internal/providers"

	"gorm.io/gorm"
)

// LocationService stores locations, enriching them through the geocoder when
// one is configured. Geocoder failures never fail the write.
type LocationService struct {
	db        *gorm.DB
	locations *repositories.LocationRepository
	events    *repositories.EventRepository
	geocoder  providers.Geocoder
	sink      common.NotificationSink
}

// NewLocationService accepts a nil geocoder, which disables enrichment and dedup.
func NewLocationService(db *gorm.DB, geocoder providers.Geocoder, sink common.NotificationSink) *LocationService {
	if sink == nil {
		sink = common.NopSink{}
	}
	return &LocationService{
		db:        db,
		locations: repositories.NewLocationRepository(db),
		events:    repositories.NewEventRepository(db),
		geocoder:  geocoder,
		sink:      sink,
	}
}

func (s *LocationService) Get(ctx context.Context, id uint) (*dtos.LocationResponse, error) {
	loc, err := s.locations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, notFound("location", id)
	}
	resp := toLocationResponse(loc)
	return &resp, nil
}

func (s *LocationService) List(ctx context.Context, page dtos.Page) ([]dtos.LocationResponse, error) {
	if err := validateStruct(page); err != nil {
		return nil, err
	}
	rows, err := s.locations.List(ctx, page.Skip, page.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]dtos.LocationResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toLocationResponse(&rows[i]))
	}
	return out, nil
}

func (s *LocationService) Create(ctx context.Context, in dtos.LocationInput) (*dtos.LocationResponse, bool, error) {
	loc, err := s.Prepare(ctx, in)
	if err != nil {
		return nil, false, err
	}

	var created bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loc, created, err = s.FindOrCreateTx(ctx, tx, loc)
		return err
	})
	if err != nil {
		return nil, false, classifyDBError(err)
	}

	resp := toLocationResponse(loc)
	if created {
		s.sink.Publish(ctx, common.NewNotification(constants.NotifyLocationCreated, resp))
	}
	return &resp, created, nil
}

// Prepare validates the input and runs enrichment. It performs network I/O and
// must be called before a transaction is opened.
func (s *LocationService) Prepare(ctx context.Context, in dtos.LocationInput) (*gormModels.Location, error) {
	if err := validateLocationInput("", in); err != nil {
		return nil, err
	}

	loc := &gormModels.Location{
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}
	if in.Address != nil {
		loc.Street = trimmed(in.Address.Street)
		loc.City = trimmed(in.Address.City)
		loc.Postcode = trimmed(in.Address.Postcode)
		loc.Country = trimmed(in.Address.Country)
	}

	s.enrich(ctx, loc)
	setFullAddress(loc)
	return loc, nil
}

func (s *LocationService) enrich(ctx context.Context, loc *gormModels.Location) {
	if s.geocoder == nil {
		return
	}

	hasAddress := loc.Street != nil || loc.City != nil || loc.Postcode != nil || loc.Country != nil
	switch {
	case hasAddress && !loc.HasCoordinates():
		query := common.JoinNonEmpty(", ", loc.Street, loc.City, loc.Postcode, loc.Country)
		coords, err := s.geocoder.Geocode(ctx, query)
		if err != nil {
			logging.Warn("Geocoding failed, storing location without coordinates",
				"query", query, "code", providers.ErrorCode(err))
			loc.Latitude, loc.Longitude = nil, nil
			return
		}
		loc.Latitude = common.Ptr(coords.Latitude)
		loc.Longitude = common.Ptr(coords.Longitude)

	case !hasAddress && loc.HasCoordinates():
		addr, err := s.geocoder.Reverse(ctx, *loc.Latitude, *loc.Longitude)
		if err != nil {
			logging.Warn("Reverse geocoding failed, storing location without address",
				"latitude", *loc.Latitude, "longitude", *loc.Longitude, "code", providers.ErrorCode(err))
			return
		}
		loc.Street, loc.City, loc.Postcode, loc.Country = addr.Street, addr.City, addr.Postcode, addr.Country
	}
}

// FindOrCreateTx persists a prepared location. With enrichment enabled an
// existing row with the same coordinates (or, lacking those, the same full
// address) is reused.
func (s *LocationService) FindOrCreateTx(ctx context.Context, tx *gorm.DB, loc *gormModels.Location) (*gormModels.Location, bool, error) {
	repo := s.locations.WithTx(tx)

	if s.geocoder != nil {
		var (
			existing *gormModels.Location
			err      error
		)
		switch {
		case loc.HasCoordinates():
			existing, err = repo.FindByCoordinates(ctx, *loc.Latitude, *loc.Longitude)
		case loc.FullAddress != nil:
			existing, err = repo.FindByFullAddress(ctx, *loc.FullAddress)
		}
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, false, nil
		}
	}

	if err := repo.Create(ctx, loc); err != nil {
		return nil, false, fmt.Errorf("failed to create location: %w", err)
	}
	return loc, true, nil
}

// Update patches address components and coordinates without re-geocoding.
func (s *LocationService) Update(ctx context.Context, id uint, req dtos.UpdateLocationReq) (*dtos.LocationResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, NewValidationError("latitude", "latitude and longitude must be given together")
	}

	var loc *gormModels.Location
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.locations.WithTx(tx)

		var err error
		loc, err = repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if loc == nil {
			return notFound("location", id)
		}

		if a := req.Address; a != nil {
			if a.Street != nil {
				loc.Street = trimmed(a.Street)
			}
			if a.City != nil {
				loc.City = trimmed(a.City)
			}
			if a.Postcode != nil {
				loc.Postcode = trimmed(a.Postcode)
			}
			if a.Country != nil {
				loc.Country = trimmed(a.Country)
			}
		}
		if req.Latitude != nil {
			loc.Latitude, loc.Longitude = req.Latitude, req.Longitude
		}
		setFullAddress(loc)

		return repo.Save(ctx, loc)
	})
	if err != nil {
		return nil, classifyDBError(err)
	}

	resp := toLocationResponse(loc)
	return &resp, nil
}

// Delete refuses to remove a location that events still point at.
func (s *LocationService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inUse, err := s.events.WithTx(tx).CountByLocation(ctx, id)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return fmt.Errorf("location %d is referenced by %d event(s): %w", id, inUse, ErrConflict)
		}

		rows, err := s.locations.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete location: %w", err)
		}
		if rows == 0 {
			return notFound("location", id)
		}
		return nil
	})
	return classifyDBError(err)
}

// validateLocationInput requires an address component or a full coordinate pair.
func validateLocationInput(prefix string, in dtos.LocationInput) error {
	if err := validateStruct(in); err != nil {
		if ve, ok := err.(*ValidationError); ok && prefix != "" {
			fields := make(map[string]string, len(ve.Fields))
			for k, v := range ve.Fields {
				fields[prefix+k] = v
			}
			return &ValidationError{Fields: fields}
		}
		return err
	}

	if (in.Latitude == nil) != (in.Longitude == nil) {
		return NewValidationError(prefix+"latitude", "latitude and longitude must be given together")
	}

	hasAddress := false
	if a := in.Address; a != nil {
		hasAddress = common.JoinNonEmpty("", a.Street, a.City, a.Postcode, a.Country) != ""
	}
	if !hasAddress && in.Latitude == nil {
		return NewValidationError(prefix+"address", "an address or a latitude/longitude pair is required")
	}
	return nil
}

func setFullAddress(loc *gormModels.Location) {
	full := common.JoinNonEmpty(", ", loc.Street, loc.City, loc.Postcode, loc.Country)
	if full == "" {
		loc.FullAddress = nil
		return
	}
	loc.FullAddress = &full
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
