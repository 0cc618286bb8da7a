package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/i474232898/user-geo-service/internal/geo"
	"github.com/i474232898/user-geo-service/internal/observability"
)

var (
	// ErrInvalidInput is returned when a required field is missing or empty.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when no record exists for a given id.
	ErrNotFound = errors.New("user not found")
)

// DefaultCountry is applied when a create request omits the country code.
// It is stored explicitly on the record, so later comparisons never fall
// back to an implicit default.
const DefaultCountry = "US"

// Store is the contract the key-value gateways must satisfy. Each successful
// write must be visible to subsequent reads.
type Store interface {
	Put(ctx context.Context, rec Record) error
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context) (map[string]Record, error)
	Delete(ctx context.Context, id string) error
}

// Publisher emits user change events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev ChangeEvent) error
}

// CreateInput carries the user-supplied fields for a new record.
type CreateInput struct {
	Name    string
	ZipCode string
	Country string
}

// Patch is a partial update. Nil fields were not provided and leave the
// stored value unchanged.
type Patch struct {
	Name    *string `json:"name"`
	ZipCode *string `json:"zipCode"`
	Country *string `json:"country"`
}

// Service reconciles requested mutations into record state, deciding when
// derived geolocation must be refreshed.
type Service struct {
	store    Store
	resolver geo.Resolver
	clock    clockwork.Clock
	metrics  *observability.Metrics
	events   Publisher // optional
}

// NewService creates a Service. A nil clock falls back to real time; metrics
// and events may be nil.
func NewService(store Store, resolver geo.Resolver, clock clockwork.Clock, metrics *observability.Metrics, events Publisher) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		store:    store,
		resolver: resolver,
		clock:    clock,
		metrics:  metrics,
		events:   events,
	}
}

// Create validates the input, resolves geolocation for the zip/country pair,
// and persists a new record. Nothing is resolved or written on validation
// failure; nothing is written on resolution failure.
func (s *Service) Create(ctx context.Context, in CreateInput) (Record, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Record{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.ZipCode) == "" {
		return Record{}, fmt.Errorf("%w: zipCode is required", ErrInvalidInput)
	}

	country := in.Country
	if country == "" {
		country = DefaultCountry
	}

	res, err := s.resolve(ctx, in.ZipCode, country)
	if err != nil {
		return Record{}, err
	}

	now := s.clock.Now().UTC()
	rec := Record{
		ID:        uuid.NewString(),
		Name:      in.Name,
		ZipCode:   in.ZipCode,
		Country:   res.Country,
		City:      res.City,
		Latitude:  res.Lat,
		Longitude: res.Lon,
		Timezone:  res.Timezone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Put(ctx, rec); err != nil {
		return Record{}, err
	}

	if s.metrics != nil {
		s.metrics.UsersCreated.Inc()
	}
	s.publish(ctx, "created", rec.ID, &rec)
	return rec, nil
}

// Update merges a patch into the stored record. The derived fields are
// refreshed only when the effective zip/country pair changes, and then they
// are replaced together as one set. UpdatedAt always advances; ID and
// CreatedAt never change. A failed resolution leaves the stored record
// untouched.
func (s *Service) Update(ctx context.Context, id string, p Patch) (Record, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}

	if p.Name != nil && *p.Name != "" {
		rec.Name = *p.Name
	}

	zip := rec.ZipCode
	if p.ZipCode != nil && *p.ZipCode != "" {
		zip = *p.ZipCode
	}
	country := rec.Country
	if p.Country != nil && *p.Country != "" {
		country = *p.Country
	}

	// A changed pair invalidates lat/lon/timezone/city; refresh them in one
	// step so the record never mixes old and new geolocation.
	if zip != rec.ZipCode || country != rec.Country {
		res, err := s.resolve(ctx, zip, country)
		if err != nil {
			return Record{}, err
		}
		rec.ZipCode = zip
		rec.Country = res.Country
		rec.City = res.City
		rec.Latitude = res.Lat
		rec.Longitude = res.Lon
		rec.Timezone = res.Timezone
	}

	rec.UpdatedAt = s.clock.Now().UTC()

	if err := s.store.Put(ctx, rec); err != nil {
		return Record{}, err
	}

	if s.metrics != nil {
		s.metrics.UsersUpdated.Inc()
	}
	s.publish(ctx, "updated", rec.ID, &rec)
	return rec, nil
}

// Get returns the record for id, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	return s.store.Get(ctx, id)
}

// List returns all records keyed by id.
func (s *Service) List(ctx context.Context) (map[string]Record, error) {
	return s.store.List(ctx)
}

// Delete removes the record for id, or returns ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.UsersDeleted.Inc()
	}
	s.publish(ctx, "deleted", id, nil)
	return nil
}

func (s *Service) resolve(ctx context.Context, zip, country string) (geo.Resolution, error) {
	res, err := s.resolver.Resolve(ctx, zip, country)
	if s.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		s.metrics.ResolverRequests.WithLabelValues(outcome).Inc()
	}
	if err != nil {
		return geo.Resolution{}, err
	}
	if res.Country == "" {
		res.Country = country
	}
	return res, nil
}

// publish is best effort: a lost event never fails the mutation that
// already committed.
func (s *Service) publish(ctx context.Context, op, id string, rec *Record) {
	if s.events == nil {
		return
	}
	ev := ChangeEvent{
		Op:         op,
		ID:         id,
		Record:     rec,
		OccurredAt: s.clock.Now().UTC(),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		log.Printf("publish %s event for %s failed: %v", op, id, err)
	}
}
