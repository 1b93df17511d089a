// Command seed fills a fresh database with demo accounts, stores and
// ratings.  It is safe to rerun: existing users, stores and ratings are
// left as they are.
package main

import (
    "context"
    "errors"
    "fmt"
    "log"
    "math/rand"
    "time"

    "github.com/iliyamo/store-rating/internal/config"
    "github.com/iliyamo/store-rating/internal/database"
    "github.com/iliyamo/store-rating/internal/model"
    "github.com/iliyamo/store-rating/internal/repository"
    "github.com/iliyamo/store-rating/internal/utils"
)

const seedPassword = "Password@123"

var storeCategories = []string{"Bakery", "Electronics", "Clothing", "Books", "Furniture", "Toys", "Sports", "Music", "Hardware", "Garden"}

type userStore interface {
    GetByEmail(ctx context.Context, email string) (*model.User, error)
    Create(ctx context.Context, u *model.User) error
}

type storeStore interface {
    GetByEmail(ctx context.Context, email string) (*model.Store, error)
    Create(ctx context.Context, s *model.Store) error
}

type ratingStore interface {
    InsertIfAbsent(ctx context.Context, storeID, userID uint64, value int) (bool, error)
}

type seeder struct {
    users   userStore
    stores  storeStore
    ratings ratingStore
    hash    string
    rng     *rand.Rand
}

func strPtr(s string) *string { return &s }

// ensureUser returns the existing account for u.Email or creates it.
func (s *seeder) ensureUser(ctx context.Context, u model.User) (*model.User, error) {
    existing, err := s.users.GetByEmail(ctx, u.Email)
    if err == nil {
        return existing, nil
    }
    if !errors.Is(err, repository.ErrUserNotFound) {
        return nil, err
    }
    u.PasswordHash = s.hash
    if err := s.users.Create(ctx, &u); err != nil {
        return nil, err
    }
    return &u, nil
}

func (s *seeder) ensureStore(ctx context.Context, st model.Store) (*model.Store, error) {
    existing, err := s.stores.GetByEmail(ctx, st.Email)
    if err == nil {
        return existing, nil
    }
    if !errors.Is(err, repository.ErrStoreNotFound) {
        return nil, err
    }
    if err := s.stores.Create(ctx, &st); err != nil {
        return nil, err
    }
    return &st, nil
}

// run seeds three fixed accounts, 20 users, 15 stores owned by the fixed
// owner and 3-8 random ratings per user.  It returns how many ratings were
// newly written.
func (s *seeder) run(ctx context.Context) (int, error) {
    if _, err := s.ensureUser(ctx, model.User{
        Name:    "System Administrator User",
        Email:   "admin@admin.com",
        Address: strPtr("Admin HQ, 123 Tech Park, Silicon Valley, CA 94000"),
        Role:    model.RoleAdmin,
    }); err != nil {
        return 0, fmt.Errorf("admin: %w", err)
    }
    owner, err := s.ensureUser(ctx, model.User{
        Name:    "Store Owner Representative",
        Email:   "owner@store.com",
        Address: strPtr("Owner Residence, 456 Commerce St, Retail City, NY 10001"),
        Role:    model.RoleOwner,
    })
    if err != nil {
        return 0, fmt.Errorf("owner: %w", err)
    }
    base, err := s.ensureUser(ctx, model.User{
        Name:    "Regular Shopping User Account",
        Email:   "user@user.com",
        Address: strPtr("User Apartment, 789 Consumer Ave, Market Town, TX 75001"),
        Role:    model.RoleUser,
    })
    if err != nil {
        return 0, fmt.Errorf("user: %w", err)
    }

    raters := []*model.User{base}
    for i := 1; i <= 20; i++ {
        u, err := s.ensureUser(ctx, model.User{
            Name:    fmt.Sprintf("Test User Account Number %d", i),
            Email:   fmt.Sprintf("user%d@example.com", i),
            Address: strPtr(fmt.Sprintf("10%d Random St, City %d", i, i)),
            Role:    model.RoleUser,
        })
        if err != nil {
            return 0, fmt.Errorf("user%d: %w", i, err)
        }
        raters = append(raters, u)
    }

    var stores []*model.Store
    for i := 1; i <= 15; i++ {
        st, err := s.ensureStore(ctx, model.Store{
            Name:        fmt.Sprintf("%s Store %d", storeCategories[i%len(storeCategories)], i),
            Email:       fmt.Sprintf("store%d@shop.com", i),
            Address:     fmt.Sprintf("%d Market Street, Shopping District", i*5),
            OwnerUserID: &owner.ID,
        })
        if err != nil {
            return 0, fmt.Errorf("store%d: %w", i, err)
        }
        stores = append(stores, st)
    }

    written := 0
    for _, u := range raters {
        n := 3 + s.rng.Intn(6)
        for _, idx := range s.rng.Perm(len(stores))[:n] {
            ok, err := s.ratings.InsertIfAbsent(ctx, stores[idx].ID, u.ID, 1+s.rng.Intn(5))
            if err != nil {
                return written, fmt.Errorf("rating: %w", err)
            }
            if ok {
                written++
            }
        }
    }
    return written, nil
}

func main() {
    cfg := config.LoadDB()
    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    hash, err := utils.HashPassword(seedPassword, cfg.BcryptCost)
    if err != nil {
        log.Fatalf("hash: %v", err)
    }

    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
    defer cancel()

    s := &seeder{
        users:   repository.NewUserRepo(db),
        stores:  repository.NewStoreRepo(db),
        ratings: repository.NewRatingRepo(db),
        hash:    hash,
        rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
    }
    n, err := s.run(ctx)
    if err != nil {
        log.Fatalf("seed: %v", err)
    }
    log.Printf("seed: done, %d new ratings", n)
}
