package identity

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryProvider is an in-process user pool used for local development and
// tests. Every call is appended to Calls.
type MemoryProvider struct {
	mu       sync.RWMutex
	accounts map[string]*memoryAccount
	groups   map[string]bool
	calls    []string
}

type memoryAccount struct {
	Account
	groups map[string]bool
}

// NewMemoryProvider creates an empty pool. When groups are given only those
// groups exist; otherwise any group name is accepted.
func NewMemoryProvider(groups ...string) *MemoryProvider {
	p := &MemoryProvider{accounts: map[string]*memoryAccount{}}
	if len(groups) > 0 {
		p.groups = map[string]bool{}
		for _, g := range groups {
			p.groups[g] = true
		}
	}
	return p
}

func (p *MemoryProvider) record(op string, args ...string) {
	p.calls = append(p.calls, strings.Join(append([]string{op}, args...), " "))
}

// Calls returns the provider operations issued so far, e.g. "AddUserToGroup a@b.c admin".
func (p *MemoryProvider) Calls() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

func (p *MemoryProvider) CreateUser(_ context.Context, in CreateUserInput) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("CreateUser", in.Username)
	if _, ok := p.accounts[in.Username]; ok {
		return &APIError{Op: "CreateUser", Code: "UsernameExistsException", Message: "An account with the given email already exists.", Kind: ErrUserExists}
	}
	p.accounts[in.Username] = &memoryAccount{
		Account: Account{
			Username: in.Username,
			Sub:      uuid.NewString(),
			Email:    in.Email,
			Name:     in.Name,
			Status:   "FORCE_CHANGE_PASSWORD",
		},
		groups: map[string]bool{},
	}
	return nil
}

func (p *MemoryProvider) lookup(op, username string) (*memoryAccount, error) {
	a, ok := p.accounts[username]
	if !ok {
		return nil, &APIError{Op: op, Code: "UserNotFoundException", Message: "User does not exist.", Kind: ErrUserNotFound}
	}
	return a, nil
}

func (p *MemoryProvider) checkGroup(op, group string) error {
	if p.groups != nil && !p.groups[group] {
		return &APIError{Op: op, Code: "ResourceNotFoundException", Message: "Group not found.", Kind: ErrGroupNotFound}
	}
	return nil
}

func (p *MemoryProvider) AddUserToGroup(_ context.Context, username, group string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("AddUserToGroup", username, group)
	if err := p.checkGroup("AddUserToGroup", group); err != nil {
		return err
	}
	a, err := p.lookup("AddUserToGroup", username)
	if err != nil {
		return err
	}
	a.groups[group] = true
	return nil
}

func (p *MemoryProvider) RemoveUserFromGroup(_ context.Context, username, group string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("RemoveUserFromGroup", username, group)
	if err := p.checkGroup("RemoveUserFromGroup", group); err != nil {
		return err
	}
	a, err := p.lookup("RemoveUserFromGroup", username)
	if err != nil {
		return err
	}
	delete(a.groups, group)
	return nil
}

func (p *MemoryProvider) GetUser(_ context.Context, username string) (*Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("GetUser", username)
	a, err := p.lookup("GetUser", username)
	if err != nil {
		return nil, err
	}
	acc := a.Account
	return &acc, nil
}

func (p *MemoryProvider) DeleteUser(_ context.Context, username string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("DeleteUser", username)
	if _, err := p.lookup("DeleteUser", username); err != nil {
		return err
	}
	delete(p.accounts, username)
	return nil
}

// GroupsOf returns the sorted groups the account belongs to.
func (p *MemoryProvider) GroupsOf(username string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	a, ok := p.accounts[username]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(a.groups))
	for g := range a.groups {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}
