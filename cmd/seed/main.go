package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"musicstudio/internal/config"
	"musicstudio/internal/database"
	"musicstudio/internal/domain/access"
	"musicstudio/internal/domain/auth"
	"musicstudio/internal/domain/booking"
	"musicstudio/internal/domain/payment"
	"musicstudio/internal/domain/studio"
	"musicstudio/internal/domain/upload"
)

const (
	adminEmail       = "admin@studiobook.com"
	adminPassword    = "admin12345"
	customerPassword = "customer123"
	customerCount    = 10
)

var studios = []studio.Input{
	{
		Name:        "Studio A - Professional Recording",
		Location:    "123 Music Row, Nashville, TN",
		HourlyPrice: decimal.NewFromInt(150),
		Status:      studio.StatusActive,
		Description: "Recording studio with a vintage Neve console and premium outboard gear for tracking, mixing and mastering.",
		Equipment:   "Neve 8078 Console, Pro Tools HDX, Neumann U87, AKG C414, SSL G-Comp, Lexicon 480L, Yamaha NS10M",
		Capacity:    6,
	},
	{
		Name:        "Studio B - Rehearsal Space",
		Location:    "456 Band Ave, Los Angeles, CA",
		HourlyPrice: decimal.NewFromInt(75),
		Status:      studio.StatusActive,
		Description: "Rehearsal room with full backline and monitoring for band practice and pre-production.",
		Equipment:   "Marshall JCM900, Fender Twin Reverb, DW Drum Kit, Ampeg SVT Bass Rig, Shure SM57/58 Mics",
		Capacity:    8,
	},
	{
		Name:        "Studio C - Vocal Booth",
		Location:    "789 Singer St, New York, NY",
		HourlyPrice: decimal.NewFromInt(100),
		Status:      studio.StatusActive,
		Description: "Vocal booth with treated acoustics for vocals, voice-overs and acoustic instruments.",
		Equipment:   "Neumann U67, Telefunken ELA M 251, Avalon VT-737sp, Universal Audio 1176, Acoustic Treatment",
		Capacity:    3,
	},
	{
		Name:        "Studio D - Production Suite",
		Location:    "321 Producer Blvd, Atlanta, GA",
		HourlyPrice: decimal.NewFromInt(125),
		Status:      studio.StatusActive,
		Description: "Production suite for beat making, arrangement and production.",
		Equipment:   "Ableton Live, Native Instruments Maschine, Moog Sub 37, Roland Jupiter-8, KRK Rokit monitors",
		Capacity:    4,
	},
	{
		Name:        "Studio E - Mixing & Mastering",
		Location:    "654 Mix Lane, Chicago, IL",
		HourlyPrice: decimal.NewFromInt(200),
		Status:      studio.StatusActive,
		Description: "Mixing and mastering suite with analog processing.",
		Equipment:   "SSL 4000G+, Genelec 1037C, Manley Massive Passive, Tube-Tech CL 1B, Empirical Labs Distressor",
		Capacity:    2,
	},
	{
		Name:        "Studio F - Live Room",
		Location:    "987 Live St, Austin, TX",
		HourlyPrice: decimal.NewFromInt(175),
		Status:      studio.StatusMaintenance,
		Description: "Large live room for full band recordings.",
		Equipment:   "Coles 4038, AKG C12, Neumann KM184, SSL E-Series EQ, Empirical Labs EL8 Distressor",
		Capacity:    10,
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(&auth.User{}, &studio.Studio{}, &booking.Booking{}, &upload.Upload{}, &payment.Payment{}); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	for _, table := range []string{"payments", "payment_proofs", "bookings", "studios", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("clean %s: %v", table, err)
		}
	}

	if err := seed(context.Background(), db, rand.New(rand.NewSource(time.Now().UnixNano()))); err != nil {
		log.Fatal(err)
	}
	log.Println("Seed completed")
}

func seed(ctx context.Context, db *gorm.DB, rnd *rand.Rand) error {
	tx := database.NewTransactor(db)
	users := auth.NewRepository(db)
	studioRepo := studio.NewRepository(db)

	studioService := studio.NewService(studioRepo, tx, log.Printf)
	bookingService := booking.NewService(booking.NewRepository(db), studioRepo, tx, nil, nil, log.Printf)
	paymentService := payment.NewService(payment.NewRepository(db), bookingService, tx, nil, nil, log.Printf)

	log.Println("Creating users...")
	admin, err := createUser(ctx, users, adminEmail, adminPassword, "Admin User", "+1-555-0100", access.RoleAdmin)
	if err != nil {
		return err
	}
	adminActor := admin.Actor()
	log.Printf("Admin created: %s / %s", adminEmail, adminPassword)

	var customers []*auth.User
	for i := 1; i <= customerCount; i++ {
		u, err := createUser(ctx, users,
			fmt.Sprintf("customer%d@example.com", i), customerPassword,
			fmt.Sprintf("Customer %d", i), fmt.Sprintf("+1-555-01%02d", i), access.RoleCustomer)
		if err != nil {
			return err
		}
		customers = append(customers, u)
	}
	if _, err := createUser(ctx, users, "test@example.com", customerPassword, "Test User", "", access.RoleCustomer); err != nil {
		return err
	}
	log.Printf("Customers created: %d (password %s)", customerCount+1, customerPassword)

	log.Println("Creating studios...")
	var active []*studio.Studio
	for _, in := range studios {
		st, err := studioService.Create(ctx, adminActor, in)
		if err != nil {
			return fmt.Errorf("create studio %q: %w", in.Name, err)
		}
		if st.AcceptsBookings() {
			active = append(active, st)
		}
	}

	log.Println("Creating bookings...")
	created := 0
	for _, cust := range customers[:5] {
		actor := cust.Actor()
		for i, n := 0, 2+rnd.Intn(2); i < n; i++ {
			st := active[rnd.Intn(len(active))]
			req := booking.SlotRequest{
				StudioID:      st.ID,
				BookingDate:   time.Now().AddDate(0, 0, 1+rnd.Intn(30)).Format(time.DateOnly),
				StartTime:     fmt.Sprintf("%02d:00", 9+rnd.Intn(10)),
				DurationHours: 2 + rnd.Intn(3),
			}
			b, err := bookingService.Create(ctx, actor, req)
			if errors.Is(err, booking.ErrSlotConflict) {
				continue
			}
			if err != nil {
				return fmt.Errorf("create booking: %w", err)
			}
			created++

			if err := settle(ctx, paymentService, bookingService, adminActor, actor, b, rnd); err != nil {
				return err
			}
		}
	}
	log.Printf("Bookings created: %d", created)
	return nil
}

// settle randomly leaves a booking pending, pays it, or pays and completes it.
func settle(ctx context.Context, payments *payment.Service, bookings *booking.Service, admin, owner access.Actor, b *booking.Booking, rnd *rand.Rand) error {
	if rnd.Intn(10) < 4 {
		return nil
	}

	p, err := payments.Submit(ctx, owner, payment.SubmitRequest{
		BookingID:       b.ID,
		Amount:          b.TotalAmount,
		PaymentMethod:   payment.MethodBankTransfer,
		ReferenceNumber: fmt.Sprintf("SEED-%d", b.ID),
	})
	if err != nil {
		return fmt.Errorf("submit payment for booking %d: %w", b.ID, err)
	}
	if _, err := payments.Verify(ctx, admin, p.ID); err != nil {
		return fmt.Errorf("verify payment %d: %w", p.ID, err)
	}

	if rnd.Intn(2) == 0 {
		if _, err := bookings.UpdateStatus(ctx, admin, b.ID, booking.StatusCompleted, nil); err != nil {
			return fmt.Errorf("complete booking %d: %w", b.ID, err)
		}
	}
	return nil
}

func createUser(ctx context.Context, users *auth.Repository, email, password, name, phone string, role access.Role) (*auth.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &auth.User{Email: email, PasswordHash: hash, Name: name, Phone: phone, Role: role}
	if err := users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user %s: %w", email, err)
	}
	return u, nil
}
