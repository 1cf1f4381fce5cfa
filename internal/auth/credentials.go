package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrUserNotFound is returned by FindByLogin when no row matches.
var ErrUserNotFound = errors.New("user not found")

// User mirrors a tbl_usuarios row in the agencias database.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Login        string `json:"login"`
	PasswordHash string `json:"-"`
	PerfilID     int    `json:"id_perfil"`
	AgenciaID    *int   `json:"agencia_id"`
}

// CredentialStore is the credential side of the agencias database. The only
// mutations are the remember-token writes at login and logout.
type CredentialStore interface {
	FindByLogin(ctx context.Context, login string) (*User, error)
	SaveRememberToken(ctx context.Context, userID int, tokenHash string) error
	ClearRememberToken(ctx context.Context, userID int) error
}

// SQLCredentialStore backs CredentialStore with the agencias connection.
type SQLCredentialStore struct {
	db *sql.DB
}

func NewSQLCredentialStore(db *sql.DB) *SQLCredentialStore {
	return &SQLCredentialStore{db: db}
}

func (s *SQLCredentialStore) FindByLogin(ctx context.Context, login string) (*User, error) {
	const query = `
		SELECT id_usuario, nombre_usuario, login, contrasena, id_perfil, id_agencia
		FROM tbl_usuarios
		WHERE login = ?`

	var u User
	var agenciaID sql.NullInt64
	err := s.db.QueryRowContext(ctx, query, login).Scan(
		&u.ID, &u.Username, &u.Login, &u.PasswordHash, &u.PerfilID, &agenciaID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by login: %w", err)
	}
	if agenciaID.Valid {
		id := int(agenciaID.Int64)
		u.AgenciaID = &id
	}
	return &u, nil
}

func (s *SQLCredentialStore) SaveRememberToken(ctx context.Context, userID int, tokenHash string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tbl_usuarios SET remember_token = ? WHERE id_usuario = ?`, tokenHash, userID)
	if err != nil {
		return fmt.Errorf("save remember token: %w", err)
	}
	return nil
}

func (s *SQLCredentialStore) ClearRememberToken(ctx context.Context, userID int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tbl_usuarios SET remember_token = NULL WHERE id_usuario = ?`, userID)
	if err != nil {
		return fmt.Errorf("clear remember token: %w", err)
	}
	return nil
}
