package seeder

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/askhat-dev/travel-marketplace/internal/domain"
	"github.com/askhat-dev/travel-marketplace/internal/domain/entity"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/repository"
	"github.com/askhat-dev/travel-marketplace/internal/service"
)

const seedPassword = "password123"

type Options struct {
	Listings int
	Bookings bool
	Reviews  bool
	Clear    bool
}

// Seeder populates the store leaf-first: users, then listings, then bookings,
// then reviews. Everything goes through the service layer so every invariant
// (overlaps, capacity, review uniqueness) holds for seeded data too.
type Seeder struct {
	users    service.UserService
	listings service.ListingService
	bookings service.BookingService
	reviews  service.ReviewService

	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
	bookingRepo repository.BookingRepository
	reviewRepo  repository.ReviewRepository

	rng *rand.Rand
	log logger.Logger
}

func New(
	users service.UserService,
	listings service.ListingService,
	bookings service.BookingService,
	reviews service.ReviewService,
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
	bookingRepo repository.BookingRepository,
	reviewRepo repository.ReviewRepository,
	log logger.Logger,
) *Seeder {
	return &Seeder{
		users:       users,
		listings:    listings,
		bookings:    bookings,
		reviews:     reviews,
		userRepo:    userRepo,
		listingRepo: listingRepo,
		bookingRepo: bookingRepo,
		reviewRepo:  reviewRepo,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		log:         log,
	}
}

func (s *Seeder) Run(ctx context.Context, opts Options) error {
	if opts.Clear {
		s.log.Warn("clearing existing data")
		if err := s.clear(ctx); err != nil {
			return err
		}
	}

	hosts, err := s.ensureUsers(ctx, seedHosts)
	if err != nil {
		return err
	}

	s.log.Infof("creating %d listings", opts.Listings)
	listings, err := s.createListings(ctx, hosts, opts.Listings)
	if err != nil {
		return err
	}
	s.log.Infof("created %d listings", len(listings))

	var guests []*entity.User
	if opts.Bookings || opts.Reviews {
		guests, err = s.ensureUsers(ctx, seedGuests)
		if err != nil {
			return err
		}
	}

	if opts.Bookings {
		created := s.createBookings(ctx, listings, hosts, guests)
		s.log.Infof("created %d bookings", created)
	}

	if opts.Reviews {
		created := s.createReviews(ctx, listings, append(append([]*entity.User{}, hosts...), guests...))
		s.log.Infof("created %d reviews", created)
	}

	s.log.Info("database seeding completed")
	return nil
}

func (s *Seeder) clear(ctx context.Context) error {
	if err := s.reviewRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear reviews: %w", err)
	}
	if err := s.bookingRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear bookings: %w", err)
	}
	if err := s.listingRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear listings: %w", err)
	}
	return nil
}

// ensureUsers is get-or-create by username, so re-running the seeder is safe.
func (s *Seeder) ensureUsers(ctx context.Context, specs []seedUser) ([]*entity.User, error) {
	users := make([]*entity.User, 0, len(specs))
	for _, spec := range specs {
		existing, err := s.userRepo.FindByUsername(ctx, spec.Username)
		if err == nil {
			users = append(users, existing)
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up user %s: %w", spec.Username, err)
		}

		user, err := s.users.Register(ctx, service.RegisterUserInput{
			Username:  spec.Username,
			Email:     spec.Email,
			FirstName: spec.FirstName,
			LastName:  spec.LastName,
			Role:      spec.Role,
			Password:  seedPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", spec.Username, err)
		}
		s.log.Infof("created user: %s", spec.Username)
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) createListings(ctx context.Context, hosts []*entity.User, count int) ([]*entity.Listing, error) {
	listings := make([]*entity.Listing, 0, count)
	for i := 0; i < count; i++ {
		city := cities[s.rng.Intn(len(cities))]
		propertyType := entity.PropertyTypes[s.rng.Intn(len(entity.PropertyTypes))]
		host := hosts[s.rng.Intn(len(hosts))]

		templates := titleTemplates[propertyType]
		title := fmt.Sprintf(templates[s.rng.Intn(len(templates))], city.City)
		address := fmt.Sprintf("%d %s", 1+s.rng.Intn(9999), streetNames[s.rng.Intn(len(streetNames))])

		pr := priceRanges[propertyType]
		price := float64(pr.Min + s.rng.Intn(pr.Max-pr.Min+1))

		bedrooms, bathrooms, maxGuests := s.roomsFor(propertyType)

		amenities := s.pickAmenities(3 + s.rng.Intn(6))

		listing, err := s.listings.Create(ctx, service.Actor{ID: host.ID, Role: host.Role}, entity.ListingParams{
			Title:         title,
			Description:   descriptions[s.rng.Intn(len(descriptions))],
			Address:       address,
			City:          city.City,
			Country:       city.Country,
			PropertyType:  propertyType,
			PricePerNight: price,
			MaxGuests:     maxGuests,
			Bedrooms:      bedrooms,
			Bathrooms:     bathrooms,
			Amenities:     amenities,
			IsAvailable:   s.rng.Intn(4) != 0, // 75% available
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create listing %d: %w", i+1, err)
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

func (s *Seeder) roomsFor(propertyType entity.PropertyType) (bedrooms, bathrooms, maxGuests int) {
	switch propertyType {
	case entity.PropertyHostel:
		return 1 + s.rng.Intn(4), 1 + s.rng.Intn(2), 2 + s.rng.Intn(7)
	case entity.PropertyApartment, entity.PropertyCottage:
		return 1 + s.rng.Intn(3), 1 + s.rng.Intn(2), 2 + s.rng.Intn(5)
	case entity.PropertyHouse, entity.PropertyVilla:
		return 2 + s.rng.Intn(5), 2 + s.rng.Intn(4), 4 + s.rng.Intn(9)
	default: // hotel, resort
		return 1 + s.rng.Intn(4), 1 + s.rng.Intn(3), 2 + s.rng.Intn(7)
	}
}

func (s *Seeder) pickAmenities(n int) []string {
	perm := s.rng.Perm(len(amenitiesPool))
	if n > len(perm) {
		n = len(perm)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = amenitiesPool[perm[i]]
	}
	return out
}

// createBookings spreads stays across past and future dates and walks a share
// of them through the state machine (confirm, complete, cancel). Overlap
// rejections are expected with random dates and simply skipped.
func (s *Seeder) createBookings(ctx context.Context, listings []*entity.Listing, hosts, guests []*entity.User) int {
	available := make([]*entity.Listing, 0, len(listings))
	for _, l := range listings {
		if l.IsAvailable {
			available = append(available, l)
		}
	}
	if len(available) == 0 {
		s.log.Warn("no available listings to create bookings for")
		return 0
	}

	hostByID := make(map[string]*entity.User, len(hosts))
	for _, h := range hosts {
		hostByID[h.ID.Hex()] = h
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	target := len(available) * 2
	if target > 15 {
		target = 15
	}

	created := 0
	for i := 0; i < target; i++ {
		listing := available[s.rng.Intn(len(available))]
		guest := guests[s.rng.Intn(len(guests))]

		daysAhead := s.rng.Intn(91) - 30 // past 30 days to future 60 days
		checkIn := today.AddDate(0, 0, daysAhead)
		nights := 1 + s.rng.Intn(7)
		checkOut := checkIn.AddDate(0, 0, nights)

		var requests string
		if s.rng.Intn(2) == 0 {
			requests = specialRequests[s.rng.Intn(len(specialRequests))]
		}

		guestActor := service.Actor{ID: guest.ID, Role: guest.Role}
		booking, err := s.bookings.Create(ctx, guestActor, service.BookingInput{
			ListingID:       listing.ID,
			CheckIn:         checkIn,
			CheckOut:        checkOut,
			Guests:          1 + s.rng.Intn(listing.MaxGuests),
			SpecialRequests: requests,
		})
		if err != nil {
			if errors.Is(err, domain.ErrOverlapConflict) {
				continue
			}
			s.log.Warnf("skipping booking on listing %s: %v", listing.ID.Hex(), err)
			continue
		}
		created++

		s.advanceBooking(ctx, booking, listing, hostByID, guestActor)
	}
	return created
}

// advanceBooking randomly walks a fresh booking further along its lifecycle.
func (s *Seeder) advanceBooking(ctx context.Context, booking *entity.Booking, listing *entity.Listing, hostByID map[string]*entity.User, guestActor service.Actor) {
	host, ok := hostByID[listing.HostID.Hex()]
	if !ok {
		return
	}
	hostActor := service.Actor{ID: host.ID, Role: host.Role}

	switch s.rng.Intn(5) {
	case 0: // stays pending
	case 1, 2:
		if _, err := s.bookings.Confirm(ctx, hostActor, booking.ID); err != nil {
			s.log.Warnf("could not confirm seeded booking %s: %v", booking.ID.Hex(), err)
		}
	case 3:
		if _, err := s.bookings.Confirm(ctx, hostActor, booking.ID); err != nil {
			return
		}
		// Completion only succeeds for stays already past check-out.
		if _, err := s.bookings.Complete(ctx, hostActor, booking.ID); err != nil && !errors.Is(err, domain.ErrPrematureCompletion) {
			s.log.Warnf("could not complete seeded booking %s: %v", booking.ID.Hex(), err)
		}
	case 4:
		if _, err := s.bookings.Cancel(ctx, guestActor, booking.ID); err != nil {
			s.log.Warnf("could not cancel seeded booking %s: %v", booking.ID.Hex(), err)
		}
	}
}

func (s *Seeder) createReviews(ctx context.Context, listings []*entity.Listing, users []*entity.User) int {
	if len(listings) == 0 || len(users) == 0 {
		return 0
	}

	target := len(listings) * 2
	if target > 20 {
		target = 20
	}

	created := 0
	for i := 0; i < target; i++ {
		listing := listings[s.rng.Intn(len(listings))]
		user := users[s.rng.Intn(len(users))]
		actor := service.Actor{ID: user.ID, Role: user.Role}

		rating := s.pickRating()
		comments := ratingComments[rating]

		input := service.ReviewInput{
			ListingID: listing.ID,
			Rating:    rating,
			Comment:   comments[s.rng.Intn(len(comments))],
		}

		// Back the review with a completed stay when the user has one.
		completed, err := s.bookingRepo.Find(ctx, repository.BookingFilter{
			ListingID: listing.ID,
			GuestID:   user.ID,
			Status:    entity.BookingCompleted,
			Limit:     1,
		})
		if err == nil && len(completed) > 0 {
			id := completed[0].ID
			input.BookingID = &id
		}

		if _, err := s.reviews.Create(ctx, actor, input); err != nil {
			if errors.Is(err, domain.ErrAlreadyReviewed) {
				continue
			}
			s.log.Warnf("skipping review on listing %s: %v", listing.ID.Hex(), err)
			continue
		}
		created++
	}
	return created
}

func (s *Seeder) pickRating() int {
	total := 0
	for _, rw := range ratingWeights {
		total += rw.Weight
	}
	n := s.rng.Intn(total)
	for _, rw := range ratingWeights {
		if n < rw.Weight {
			return rw.Rating
		}
		n -= rw.Weight
	}
	return 5
}
