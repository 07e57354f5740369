package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/relief-service/internal/domain"
	"github.com/spec-kit/relief-service/internal/repository"
)

// In-memory repository fakes. Listing order matches the SQL repositories:
// newest first for requests/tickets, insertion order for replies.

type fakeAccountRepo struct {
	accounts map[string]*domain.Account
	seq      int
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[string]*domain.Account{}}
}

func (r *fakeAccountRepo) add(account domain.Account) *domain.Account {
	r.seq++
	account.ID = fmt.Sprintf("acct-%d", r.seq)
	account.CreatedAt = time.Now()
	r.accounts[account.ID] = &account
	return &account
}

func (r *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	created := r.add(*account)
	*account = *created
	return nil
}

func (r *fakeAccountRepo) Update(_ context.Context, account *domain.Account) error {
	if _, ok := r.accounts[account.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *account
	r.accounts[account.ID] = &stored
	return nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	account, ok := r.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, account := range r.accounts {
		if account.Email == email {
			copied := *account
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAccountRepo) GetByNationalID(_ context.Context, nationalID string) (*domain.Account, error) {
	for _, account := range r.accounts {
		if account.NationalID == nationalID {
			copied := *account
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAccountRepo) nameOf(id string) string {
	if account, ok := r.accounts[id]; ok {
		return account.DisplayName()
	}
	return id
}

type fakeHelpRequestRepo struct {
	accounts *fakeAccountRepo
	requests map[string]*domain.HelpRequest
	seq      int
}

func newFakeHelpRequestRepo(accounts *fakeAccountRepo) *fakeHelpRequestRepo {
	return &fakeHelpRequestRepo{accounts: accounts, requests: map[string]*domain.HelpRequest{}}
}

func (r *fakeHelpRequestRepo) Create(_ context.Context, request *domain.HelpRequest) error {
	r.seq++
	request.ID = fmt.Sprintf("req-%d", r.seq)
	request.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	stored := *request
	r.requests[request.ID] = &stored
	return nil
}

func (r *fakeHelpRequestRepo) Update(_ context.Context, request *domain.HelpRequest) error {
	if _, ok := r.requests[request.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *request
	r.requests[request.ID] = &stored
	return nil
}

func (r *fakeHelpRequestRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.requests[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.requests, id)
	return nil
}

func (r *fakeHelpRequestRepo) GetByID(_ context.Context, id string) (*domain.HelpRequest, error) {
	request, ok := r.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *request
	return &copied, nil
}

func (r *fakeHelpRequestRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.HelpRequestListItem, error) {
	return r.list(func(request *domain.HelpRequest) bool { return request.OwnerID == ownerID }), nil
}

func (r *fakeHelpRequestRepo) ListAll(_ context.Context) ([]domain.HelpRequestListItem, error) {
	return r.list(func(*domain.HelpRequest) bool { return true }), nil
}

func (r *fakeHelpRequestRepo) list(match func(*domain.HelpRequest) bool) []domain.HelpRequestListItem {
	var items []domain.HelpRequestListItem
	for _, request := range r.requests {
		if match(request) {
			items = append(items, domain.HelpRequestListItem{
				HelpRequest: *request,
				OwnerName:   r.accounts.nameOf(request.OwnerID),
			})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items
}

type fakeTicketRepo struct {
	accounts *fakeAccountRepo
	replies  *fakeReplyRepo
	tickets  map[string]*domain.Ticket
	seq      int
}

func newFakeTicketRepo(accounts *fakeAccountRepo, replies *fakeReplyRepo) *fakeTicketRepo {
	return &fakeTicketRepo{accounts: accounts, replies: replies, tickets: map[string]*domain.Ticket{}}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.seq++
	ticket.ID = fmt.Sprintf("tck-%d", r.seq)
	ticket.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	stored := *ticket
	r.tickets[ticket.ID] = &stored
	return nil
}

func (r *fakeTicketRepo) UpdateStatus(_ context.Context, id string, status domain.TicketStatus) error {
	ticket, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Status = status
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.TicketListItem, error) {
	return r.list(func(ticket *domain.Ticket) bool { return ticket.OwnerID == ownerID }), nil
}

func (r *fakeTicketRepo) ListAll(_ context.Context) ([]domain.TicketListItem, error) {
	return r.list(func(*domain.Ticket) bool { return true }), nil
}

func (r *fakeTicketRepo) list(match func(*domain.Ticket) bool) []domain.TicketListItem {
	var items []domain.TicketListItem
	for _, ticket := range r.tickets {
		if match(ticket) {
			items = append(items, domain.TicketListItem{
				Ticket:     *ticket,
				OwnerName:  r.accounts.nameOf(ticket.OwnerID),
				ReplyCount: r.replies.countFor(ticket.ID),
			})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items
}

type fakeReplyRepo struct {
	replies []domain.Reply
	seq     int
}

func newFakeReplyRepo() *fakeReplyRepo {
	return &fakeReplyRepo{}
}

func (r *fakeReplyRepo) Create(_ context.Context, reply *domain.Reply) error {
	r.seq++
	reply.ID = fmt.Sprintf("rep-%d", r.seq)
	reply.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	r.replies = append(r.replies, *reply)
	return nil
}

func (r *fakeReplyRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Reply, error) {
	var result []domain.Reply
	for _, reply := range r.replies {
		if reply.TicketID == ticketID {
			result = append(result, reply)
		}
	}
	return result, nil
}

func (r *fakeReplyRepo) countFor(ticketID string) int {
	count := 0
	for _, reply := range r.replies {
		if reply.TicketID == ticketID {
			count++
		}
	}
	return count
}

type fakeResetRepo struct {
	tokens map[string]*repository.PasswordResetToken
	seq    int
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: map[string]*repository.PasswordResetToken{}}
}

func (r *fakeResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	r.seq++
	token.ID = fmt.Sprintf("rst-%d", r.seq)
	token.CreatedAt = time.Now()
	stored := *token
	r.tokens[token.ID] = &stored
	return nil
}

func (r *fakeResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	for _, token := range r.tokens {
		if token.Token == tokenStr {
			copied := *token
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	token, ok := r.tokens[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	token.UsedAt = &now
	return nil
}

func principalFor(account *domain.Account) domain.Principal {
	return domain.Principal{
		AccountID:   account.ID,
		Role:        account.Role,
		DisplayName: account.DisplayName(),
	}
}
