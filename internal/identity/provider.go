package identity

import "context"

// AccountUpdate carries optional credential/profile changes for a provider
// account. Nil fields are left untouched.
type AccountUpdate struct {
	DisplayName *string
	PhotoURL    *string
	Password    *string
}

// Provider provisions authentication accounts for staff. The store stays
// authoritative for user records; the provider only owns credentials.
type Provider interface {
	CreateAccount(ctx context.Context, email, password, displayName, photoURL string) error
	UpdateAccount(ctx context.Context, email string, update AccountUpdate) error
	DeleteAccount(ctx context.Context, email string) error
}

// CredentialStore persists password hashes for locally provisioned accounts.
type CredentialStore interface {
	SetPasswordHash(ctx context.Context, email, hash string) error
	ClearPasswordHash(ctx context.Context, email string) error
}

type localProvider struct {
	creds CredentialStore
	cost  int
}

// NewLocalProvider returns a Provider that keeps bcrypt password hashes in the
// credential store, so staff can log in against this service directly.
func NewLocalProvider(creds CredentialStore, bcryptCost int) Provider {
	return &localProvider{creds: creds, cost: bcryptCost}
}

func (p *localProvider) CreateAccount(ctx context.Context, email, password, _, _ string) error {
	hash, err := HashPassword(password, p.cost)
	if err != nil {
		return err
	}
	return p.creds.SetPasswordHash(ctx, email, hash)
}

func (p *localProvider) UpdateAccount(ctx context.Context, email string, update AccountUpdate) error {
	if update.Password == nil || *update.Password == "" {
		return nil
	}
	hash, err := HashPassword(*update.Password, p.cost)
	if err != nil {
		return err
	}
	return p.creds.SetPasswordHash(ctx, email, hash)
}

func (p *localProvider) DeleteAccount(ctx context.Context, email string) error {
	return p.creds.ClearPasswordHash(ctx, email)
}
