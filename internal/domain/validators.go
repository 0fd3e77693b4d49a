package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)

	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

var ageMessage = fmt.Sprintf("Age must be between %d and %d", MinPlayerAge, MaxPlayerAge)

const (
	foundedMessage  = "Founded year must be between 1800 and current year"
	contractMessage = "Contract length must be between 0.5 and 10 years"
)

// MinPasswordLength is enforced on sign-up and password reset.
const MinPasswordLength = 6

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// IsValidEmail reports whether email has the local@domain.tld shape.
func IsValidEmail(email string) bool {
	return ValidateEmail(email) == nil
}

// ValidatePassword checks the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// IsValidPhone accepts an optional leading "+" followed by 1-16 digits once
// spaces, dashes and parentheses are stripped.
func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(phoneSeparators.Replace(phone))
}

// IsValidURL reports whether raw parses as an absolute URL.
func IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}

// ValidatePlayer checks a player candidate.
func ValidatePlayer(p PlayerInput) ValidationResult {
	errs := seeded(p.malformed)

	errs.check(minLen(p.Name, 2), "name", "Name must be at least 2 characters long")
	errs.check(p.Age != nil && *p.Age >= MinPlayerAge && *p.Age <= MaxPlayerAge,
		"age", ageMessage)

	if p.Position == "" {
		errs.add("position", "Position is required")
	} else {
		errs.check(in(p.Position, Positions()...), "position", "Position must be Goalkeeper, Defender, Midfielder or Forward")
	}

	errs.check(minLen(p.Nationality, 2), "nationality", "Nationality is required")

	if p.MarketValue != nil {
		errs.check(*p.MarketValue >= 0, "marketValue", "Market value cannot be negative")
	}
	if p.Height != nil {
		errs.check(*p.Height > 0, "height", "Height must be a positive number")
	}
	if p.Weight != nil {
		errs.check(*p.Weight > 0, "weight", "Weight must be a positive number")
	}
	if p.PreferredFoot != "" {
		errs.check(in(p.PreferredFoot, FootRight, FootLeft, FootBoth), "preferredFoot", "Preferred foot must be right, left or both")
	}

	return errs.result()
}

// ValidateTeam checks a team candidate against the current calendar year.
func ValidateTeam(t TeamInput) ValidationResult {
	return validateTeam(t, time.Now().Year())
}

func validateTeam(t TeamInput, currentYear int) ValidationResult {
	errs := seeded(t.malformed)

	errs.check(minLen(t.Name, 2), "name", "Team name must be at least 2 characters long")
	errs.check(minLen(t.League, 2), "league", "League is required")
	errs.check(minLen(t.Country, 2), "country", "Country is required")

	if t.Founded != nil {
		errs.check(*t.Founded >= MinFoundedYear && *t.Founded <= currentYear,
			"founded", foundedMessage)
	}
	if present(t.Website) {
		errs.check(IsValidURL(strings.TrimSpace(t.Website)), "website", "Please enter a valid URL")
	}

	return errs.result()
}

// ValidateTransfer checks a transfer candidate. Field checks run first; the
// from/to cross-check runs afterwards and only when both teams are given.
func ValidateTransfer(t TransferInput) ValidationResult {
	errs := seeded(t.malformed)

	errs.check(present(t.PlayerID), "playerId", "Player is required")
	errs.check(present(t.FromTeam), "fromTeam", "From team is required")
	errs.check(present(t.ToTeam), "toTeam", "To team is required")
	errs.check(!t.TransferDate.IsZero(), "transferDate", "Transfer date is required")

	if t.TransferFee != nil {
		errs.check(*t.TransferFee >= 0, "transferFee", "Transfer fee cannot be negative")
	}
	if t.ContractLength != nil {
		errs.check(*t.ContractLength >= MinContractYears && *t.ContractLength <= MaxContractYears,
			"contractLength", contractMessage)
	}
	if t.TransferType != "" {
		errs.check(in(t.TransferType, TransferPermanent, TransferLoan, TransferFree),
			"transferType", "Transfer type must be permanent, loan or free")
	}
	if t.Status != "" {
		errs.check(in(t.Status, TransferPending, TransferCompleted, TransferCancelled),
			"status", "Status must be pending, completed or cancelled")
	}

	if !errs.has("fromTeam") && !errs.has("toTeam") &&
		strings.TrimSpace(t.FromTeam) == strings.TrimSpace(t.ToTeam) {
		errs.add("toTeam", "From team and to team cannot be the same")
	}

	return errs.result()
}

// ValidateUser checks a user candidate.
func ValidateUser(u UserInput) ValidationResult {
	errs := fieldErrors{}

	errs.check(minLen(u.Name, 2), "name", "Name must be at least 2 characters long")
	errs.check(IsValidEmail(strings.TrimSpace(u.Email)), "email", "Please enter a valid email address")

	if u.Role == "" {
		errs.add("role", "Role is required")
	} else {
		errs.check(in(u.Role, Roles()...), "role", "Role must be user, admin, manager or scout")
	}
	if u.Department != "" {
		errs.check(in(u.Department, DepartmentManagement, DepartmentScouting, DepartmentTransfers,
			DepartmentAnalytics, DepartmentAdministration), "department", "Please select a valid department")
	}
	if present(u.Phone) {
		errs.check(IsValidPhone(u.Phone), "phone", "Please enter a valid phone number")
	}

	return errs.result()
}
