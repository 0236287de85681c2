package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/okian/canteen/internal/domain/model"
)

const memoryPath = ":memory:"

// SQLiteStore persists the catalog, users and the order log in SQLite.
// List fields and order items are stored as JSON text. Writes are
// serialized with a mutex; reads run concurrently under WAL.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
// ":memory:" opens a shared in-memory database on a single connection.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		path = memoryPath
	}
	dsn := path
	if path == memoryPath {
		dsn = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == memoryPath {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if path != memoryPath {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS foods (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		image TEXT,
		cuisine TEXT,
		veg_non_veg TEXT,
		spice_level TEXT,
		price REAL,
		restaurant_id TEXT
	);

	CREATE TABLE IF NOT EXISTS restaurants (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		location TEXT
	);

	CREATE TABLE IF NOT EXISTS hostel_blocks (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		floors INTEGER
	);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		student_id TEXT UNIQUE,
		name TEXT,
		email TEXT,
		hostel TEXT,
		floor TEXT,
		room_number TEXT,
		cuisines TEXT,
		spice_level TEXT,
		veg_non_veg TEXT,
		favourite_foods TEXT
	);

	CREATE TABLE IF NOT EXISTS orders (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		user_id TEXT NOT NULL,
		restaurant_id TEXT,
		hostel_block TEXT,
		floor TEXT,
		room_number TEXT,
		time_slot TEXT,
		items TEXT NOT NULL,
		status TEXT,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);
	CREATE INDEX IF NOT EXISTS idx_orders_hostel ON orders(hostel_block);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

const foodColumns = `id, name, image, cuisine, veg_non_veg, spice_level, price, restaurant_id`

func scanFood(row interface{ Scan(...any) error }) (model.Food, error) {
	var (
		f     model.Food
		image sql.NullString
	)
	err := row.Scan(&f.ID, &f.Name, &image, &f.Cuisine, &f.VegNonVeg, &f.SpiceLevel, &f.Price, &f.RestaurantID)
	f.Image = image.String
	return f, err
}

func (s *SQLiteStore) ListFoods(ctx context.Context) ([]model.Food, error) {
	defer observe("list_foods", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+foodColumns+` FROM foods ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query foods: %w", err)
	}
	defer rows.Close()

	out := make([]model.Food, 0)
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("scan food: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetFood(ctx context.Context, id string) (model.Food, error) {
	defer observe("get_food", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := scanFood(s.db.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM foods WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Food{}, fmt.Errorf("food %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Food{}, fmt.Errorf("get food: %w", err)
	}
	return f, nil
}

func (s *SQLiteStore) ListRestaurants(ctx context.Context) ([]model.Restaurant, error) {
	defer observe("list_restaurants", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, location FROM restaurants ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query restaurants: %w", err)
	}
	defer rows.Close()

	out := make([]model.Restaurant, 0)
	for rows.Next() {
		var (
			r   model.Restaurant
			loc sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Name, &loc); err != nil {
			return nil, fmt.Errorf("scan restaurant: %w", err)
		}
		r.Location = loc.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetRestaurant(ctx context.Context, id string) (model.Restaurant, error) {
	defer observe("get_restaurant", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		r   model.Restaurant
		loc sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, name, location FROM restaurants WHERE id = ?`, id).Scan(&r.ID, &r.Name, &loc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Restaurant{}, fmt.Errorf("restaurant %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Restaurant{}, fmt.Errorf("get restaurant: %w", err)
	}
	r.Location = loc.String
	return r, nil
}

func (s *SQLiteStore) ListHostelBlocks(ctx context.Context) ([]model.HostelBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT name, floors FROM hostel_blocks ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query hostel blocks: %w", err)
	}
	defer rows.Close()

	out := make([]model.HostelBlock, 0)
	for rows.Next() {
		var h model.HostelBlock
		if err := rows.Scan(&h.Name, &h.Floors); err != nil {
			return nil, fmt.Errorf("scan hostel block: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) PutFood(ctx context.Context, f model.Food) error {
	if f.ID == "" || f.Name == "" {
		return fmt.Errorf("food needs id and name: %w", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO foods (`+foodColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, image = excluded.image, cuisine = excluded.cuisine,
			veg_non_veg = excluded.veg_non_veg, spice_level = excluded.spice_level,
			price = excluded.price, restaurant_id = excluded.restaurant_id`,
		f.ID, f.Name, f.Image, f.Cuisine, f.VegNonVeg, f.SpiceLevel, f.Price, f.RestaurantID)
	if err != nil {
		return fmt.Errorf("put food: %w", err)
	}
	return nil
}

func (s *SQLiteStore) PutRestaurant(ctx context.Context, r model.Restaurant) error {
	if r.ID == "" {
		return fmt.Errorf("restaurant needs id: %w", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO restaurants (id, name, location) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, location = excluded.location`,
		r.ID, r.Name, r.Location)
	if err != nil {
		return fmt.Errorf("put restaurant: %w", err)
	}
	return nil
}

func (s *SQLiteStore) PutHostelBlock(ctx context.Context, h model.HostelBlock) error {
	if h.Name == "" {
		return fmt.Errorf("hostel block needs a name: %w", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hostel_blocks (name, floors) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET floors = excluded.floors`,
		h.Name, h.Floors)
	if err != nil {
		return fmt.Errorf("put hostel block: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendOrder(ctx context.Context, o model.Order) error {
	defer observe("append_order", time.Now())
	if o.ID == "" {
		return fmt.Errorf("order needs an id: %w", ErrInvalidRecord)
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, restaurant_id, hostel_block, floor, room_number, time_slot, items, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, o.RestaurantID, o.HostelBlock, o.Floor, o.RoomNumber, o.TimeSlot,
		string(items), o.Status, o.Timestamp.UnixNano())
	if isUniqueViolation(err) {
		return fmt.Errorf("order %q: %w", o.ID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("append order: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListOrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	defer observe("list_orders_by_user", time.Now())
	return s.queryOrders(ctx, `WHERE user_id = ?`, userID)
}

func (s *SQLiteStore) ListOrdersByCohort(ctx context.Context, cohort string) ([]model.Order, error) {
	defer observe("list_orders_by_cohort", time.Now())
	return s.queryOrders(ctx, `WHERE hostel_block = ?`, cohort)
}

func (s *SQLiteStore) queryOrders(ctx context.Context, where string, arg string) ([]model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, restaurant_id, hostel_block, floor, room_number, time_slot, items, status, created_at
		FROM orders `+where+` ORDER BY seq`, arg)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	out := make([]model.Order, 0)
	for rows.Next() {
		var (
			o                                     model.Order
			restaurant, floor, room, slot, status sql.NullString
			items                                 string
			created                               int64
		)
		if err := rows.Scan(&o.ID, &o.UserID, &restaurant, &o.HostelBlock, &floor, &room, &slot, &items, &status, &created); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		// A row whose items no longer decode is kept with no items; trending skips it.
		_ = json.Unmarshal([]byte(items), &o.Items)
		o.RestaurantID = restaurant.String
		o.Floor = floor.String
		o.RoomNumber = room.String
		o.TimeSlot = slot.String
		o.Status = status.String
		o.Timestamp = time.Unix(0, created).UTC()
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CountOrders(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, u model.User) error {
	defer observe("create_user", time.Now())
	if u.ID == "" {
		return fmt.Errorf("user needs an id: %w", ErrInvalidRecord)
	}
	cuisines, err := json.Marshal([]string(u.Cuisines))
	if err != nil {
		return fmt.Errorf("encode cuisines: %w", err)
	}
	favourites, err := json.Marshal([]string(u.FavouriteFoods))
	if err != nil {
		return fmt.Errorf("encode favourite foods: %w", err)
	}
	var studentID any
	if u.StudentID != "" {
		studentID = u.StudentID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, student_id, name, email, hostel, floor, room_number, cuisines, spice_level, veg_non_veg, favourite_foods)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, studentID, u.Name, u.Email, u.Hostel, u.Floor, u.RoomNumber,
		string(cuisines), u.SpiceLevel, u.VegNonVeg, string(favourites))
	if isUniqueViolation(err) {
		return fmt.Errorf("user %q: %w", u.ID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

const userColumns = `id, student_id, name, email, hostel, floor, room_number, cuisines, spice_level, veg_non_veg, favourite_foods`

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (model.User, error) {
	defer observe("get_user", time.Now())
	return s.queryUser(ctx, `id = ?`, id)
}

func (s *SQLiteStore) FindUserByStudentID(ctx context.Context, studentID string) (model.User, error) {
	return s.queryUser(ctx, `student_id = ?`, studentID)
}

func (s *SQLiteStore) queryUser(ctx context.Context, where, arg string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		u                                                        model.User
		studentID, name, email, hostel, floor, room, spice, diet sql.NullString
		cuisines, favourites                                     sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg).Scan(
		&u.ID, &studentID, &name, &email, &hostel, &floor, &room, &cuisines, &spice, &diet, &favourites)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("user %q: %w", arg, ErrNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	u.StudentID = studentID.String
	u.Name = name.String
	u.Email = email.String
	u.Hostel = hostel.String
	u.Floor = floor.String
	u.RoomNumber = room.String
	u.SpiceLevel = spice.String
	u.VegNonVeg = diet.String
	if cuisines.Valid {
		_ = json.Unmarshal([]byte(cuisines.String), &u.Cuisines)
	}
	if favourites.Valid {
		_ = json.Unmarshal([]byte(favourites.String), &u.FavouriteFoods)
	}
	return u, nil
}

func (s *SQLiteStore) CountUsers(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// isUniqueViolation reports a UNIQUE or PRIMARY KEY constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
