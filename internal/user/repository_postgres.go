package user

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	listUsersQuery = `
		SELECT id, name, email, password, role, phone, address, active, created_at, updated_at
		FROM users
		ORDER BY id
	`
	getUserByIDQuery = `
		SELECT id, name, email, password, role, phone, address, active, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	getUserByEmailQuery = `
		SELECT id, name, email, password, role, phone, address, active, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	insertUserQuery = `
		INSERT INTO users (name, email, password, role, phone, address, active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		RETURNING id, created_at, updated_at
	`
	updateUserQuery = `
		UPDATE users
		SET name = $1,
			email = $2,
			password = CASE WHEN $3 <> '' THEN $3 ELSE password END,
			role = $4,
			phone = $5,
			address = $6,
			updated_at = now()
		WHERE id = $7
	`
	deleteUserQuery = "DELETE FROM users WHERE id = $1"
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List() []User {
	rows, err := r.db.Query(listUsersQuery)
	if err != nil {
		return []User{}
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			continue
		}
		users = append(users, user)
	}

	return users
}

func (r *PostgresRepository) GetByID(id int) (User, error) {
	user, err := scanUser(r.db.QueryRow(getUserByIDQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(email string) (User, error) {
	user, err := scanUser(r.db.QueryRow(getUserByEmailQuery, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	return user, nil
}

func (r *PostgresRepository) Create(user User) (User, error) {
	var createdAt, updatedAt sql.NullString
	err := r.db.QueryRow(
		insertUserQuery,
		user.Name,
		user.Email,
		user.Password,
		user.Role,
		nullable(user.Phone),
		nullable(user.Address),
	).Scan(&user.ID, &createdAt, &updatedAt)
	if err != nil {
		return User{}, err
	}

	user.Active = true
	user.CreatedAt = createdAt.String
	user.UpdatedAt = updatedAt.String
	return user, nil
}

func (r *PostgresRepository) Update(id int, userUpdate User) (User, error) {
	result, err := r.db.Exec(
		updateUserQuery,
		userUpdate.Name,
		userUpdate.Email,
		userUpdate.Password,
		userUpdate.Role,
		nullable(userUpdate.Phone),
		nullable(userUpdate.Address),
		id,
	)
	if err != nil {
		return User{}, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return User{}, err
	}
	if affected == 0 {
		return User{}, ErrNotFound
	}

	return r.GetByID(id)
}

func (r *PostgresRepository) Delete(id int) error {
	result, err := r.db.Exec(deleteUserQuery, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func nullable(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func scanUser(scanner rowScanner) (User, error) {
	user := User{}
	var phone, address sql.NullString
	var createdAt, updatedAt sql.NullString

	if err := scanner.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Password,
		&user.Role,
		&phone,
		&address,
		&user.Active,
		&createdAt,
		&updatedAt,
	); err != nil {
		return User{}, err
	}

	if phone.Valid {
		user.Phone = &phone.String
	}
	if address.Valid {
		user.Address = &address.String
	}
	user.CreatedAt = createdAt.String
	user.UpdatedAt = updatedAt.String

	return user, nil
}
