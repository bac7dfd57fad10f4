package domain

import "fmt"

// Account is the classification of a user record: DomainAccount or
// LocalAccount. The set is closed.
type Account interface {
	// LoginName renders the name used to sign in with this account.
	LoginName(user string) (string, error)
	isAccount()
}

// DomainAccount is an account in a directory domain.
type DomainAccount struct {
	DomainName string
}

// LocalAccount is an account that exists on a single host.
type LocalAccount struct {
	Hostname string
}

func (DomainAccount) isAccount() {}
func (LocalAccount) isAccount()  {}

// LoginName returns DOMAIN\user.
func (a DomainAccount) LoginName(user string) (string, error) {
	if user == "" {
		return "", NewValidationError("name", "required")
	}
	if a.DomainName == "" {
		return "", NewValidationError("domain", "domain name required for domain accounts")
	}
	return fmt.Sprintf(`%s\%s`, a.DomainName, user), nil
}

// LoginName returns user@hostname.
func (a LocalAccount) LoginName(user string) (string, error) {
	if user == "" {
		return "", NewValidationError("name", "required")
	}
	if a.Hostname == "" {
		return "", NewValidationError("domain", "hostname required for local accounts")
	}
	return fmt.Sprintf("%s@%s", user, a.Hostname), nil
}

// Account derives the account variant from IsDomain and Domain.
func (u *UserRecord) Account() Account {
	if u.IsDomain {
		return DomainAccount{DomainName: u.Domain}
	}
	return LocalAccount{Hostname: u.Domain}
}

// LoginName returns the login name for the record, or "" when the record
// does not carry enough data to build one.
func (u *UserRecord) LoginName() string {
	name, err := u.Account().LoginName(u.Name)
	if err != nil {
		return ""
	}
	return name
}
