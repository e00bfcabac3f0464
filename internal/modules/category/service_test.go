package category

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeRepository struct {
	categories []Category
	listCalls  int
}

func (f *fakeRepository) List(ctx context.Context) ([]Category, error) {
	f.listCalls++
	return f.categories, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id int64) (*Category, error) {
	for i := range f.categories {
		if f.categories[i].ID == id {
			return &f.categories[i], nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepository) FindByName(ctx context.Context, name string) (*Category, error) {
	for i := range f.categories {
		if strings.EqualFold(f.categories[i].Name, name) {
			return &f.categories[i], nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepository) Search(ctx context.Context, q string) ([]Category, error) {
	var out []Category
	for _, c := range f.categories {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(q)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func ptr[T any](v T) *T { return &v }

func testCatalog() []Category {
	return []Category{
		{ID: 1, Name: "Coffee", Latitude: ptr(52.5200), Longitude: ptr(13.4050)},  // Berlin
		{ID: 2, Name: "Hiking", Latitude: ptr(48.1351), Longitude: ptr(11.5820)},  // Munich
		{ID: 3, Name: "Museums", Latitude: ptr(50.1109), Longitude: ptr(8.6821)},  // Frankfurt
		{ID: 4, Name: "Online Gaming"},                                            // no coordinates
	}
}

func newTestService(t *testing.T, repo *fakeRepository) Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewService(&Config{
		Repo:     repo,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Cache:    client,
		CacheTTL: 5 * time.Minute,
	})
}

func TestListCacheAside(t *testing.T) {
	repo := &fakeRepository{categories: testCatalog()}
	svc := newTestService(t, repo)

	first, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	second, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(first) != 4 || len(second) != 4 {
		t.Errorf("got %d then %d categories, want 4", len(first), len(second))
	}
	if repo.listCalls != 1 {
		t.Errorf("repo hit %d times, want 1 (second call served from cache)", repo.listCalls)
	}
}

func TestListDropsCorruptCacheEntry(t *testing.T) {
	repo := &fakeRepository{categories: testCatalog()}
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	svc := NewService(&Config{
		Repo:     repo,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Cache:    client,
		CacheTTL: 5 * time.Minute,
	})

	mr.Set(listCacheKey, "{not json")
	cats, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(cats) != 4 || repo.listCalls != 1 {
		t.Error("corrupt cache entry must fall through to the repository")
	}
}

func TestGetByIDOrName(t *testing.T) {
	svc := newTestService(t, &fakeRepository{categories: testCatalog()})

	byID, err := svc.Get(context.Background(), "2")
	if err != nil || byID.Name != "Hiking" {
		t.Errorf("Get by id: got %+v, err %v", byID, err)
	}

	byName, err := svc.Get(context.Background(), "museums")
	if err != nil || byName.ID != 3 {
		t.Errorf("Get by name: got %+v, err %v", byName, err)
	}

	if _, err := svc.Get(context.Background(), "unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNearestSortsByDistance(t *testing.T) {
	svc := newTestService(t, &fakeRepository{categories: testCatalog()})

	// Query from Berlin: Coffee is co-located, Museums (Frankfurt) is closer
	// than Hiking (Munich).
	nearest, all, err := svc.Nearest(context.Background(), 52.5200, 13.4050, nil)
	if err != nil {
		t.Fatalf("Nearest returned error: %v", err)
	}
	if nearest.ID != 1 {
		t.Errorf("nearest = %s, want Coffee", nearest.Name)
	}
	if len(all) != 3 {
		t.Fatalf("got %d nearby categories, want 3 (no-coordinate entries skipped)", len(all))
	}
	wantOrder := []int64{1, 3, 2}
	for i, want := range wantOrder {
		if all[i].ID != want {
			t.Errorf("position %d: got id %d, want %d", i, all[i].ID, want)
		}
	}
	if nearest.DistanceKM != 0 {
		t.Errorf("co-located distance = %v, want 0", nearest.DistanceKM)
	}
}

func TestNearestRadiusFilter(t *testing.T) {
	svc := newTestService(t, &fakeRepository{categories: testCatalog()})

	// Berlin–Frankfurt is ~420km, Berlin–Munich ~500km.
	radius := 450.0
	_, all, err := svc.Nearest(context.Background(), 52.5200, 13.4050, &radius)
	if err != nil {
		t.Fatalf("Nearest returned error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d categories inside %.0fkm, want 2", len(all), radius)
	}

	tiny := 0.5
	nearest, all, err := svc.Nearest(context.Background(), 52.5200, 13.4050, &tiny)
	if err != nil {
		t.Fatalf("Nearest returned error: %v", err)
	}
	if nearest.ID != 1 || len(all) != 1 {
		t.Errorf("tight radius: got %d results, want only the co-located one", len(all))
	}
}

func TestNearestNoneInRange(t *testing.T) {
	svc := newTestService(t, &fakeRepository{categories: []Category{{ID: 4, Name: "Online Gaming"}}})

	if _, _, err := svc.Nearest(context.Background(), 0, 0, nil); !errors.Is(err, ErrNoneNearby) {
		t.Errorf("expected ErrNoneNearby, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	svc := newTestService(t, &fakeRepository{categories: testCatalog()})

	cats, err := svc.Search(context.Background(), "ing")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(cats) != 2 {
		t.Errorf("got %d matches for %q, want 2", len(cats), "ing")
	}
}
