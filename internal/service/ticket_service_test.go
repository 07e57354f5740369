package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/relief-service/internal/domain"
	"github.com/spec-kit/relief-service/internal/events"
	apperrors "github.com/spec-kit/relief-service/pkg/util"
)

type ticketFixture struct {
	service  *TicketService
	requests *HelpRequestService
	tickets  *fakeTicketRepo
	replies  *fakeReplyRepo
	citizen  domain.Principal
	other    domain.Principal
	support  domain.Principal
	admin    domain.Principal
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	accounts := newFakeAccountRepo()
	citizen := accounts.add(domain.Account{FirstName: "Maria", LastName: "Lopez", Email: "maria@example.com", Role: domain.RoleCitizen})
	other := accounts.add(domain.Account{FirstName: "Jorge", LastName: "Rios", Email: "jorge@example.com", Role: domain.RoleCitizen})
	support := accounts.add(domain.Account{FirstName: "Sofia", LastName: "Mesa", Email: "sofia@example.com", Role: domain.RoleSupport})
	admin := accounts.add(domain.Account{FirstName: "Andres", LastName: "Paz", Email: "andres@example.com", Role: domain.RoleAdmin})

	dispatcher := events.NewInMemoryDispatcher()
	requestRepo := newFakeHelpRequestRepo(accounts)
	replies := newFakeReplyRepo()
	tickets := newFakeTicketRepo(accounts, replies)

	return &ticketFixture{
		service: NewTicketService(TicketDependencies{
			TicketRepo:      tickets,
			ReplyRepo:       replies,
			HelpRequestRepo: requestRepo,
			AccountRepo:     accounts,
			Dispatcher:      dispatcher,
		}),
		requests: NewHelpRequestService(requestRepo, dispatcher),
		tickets:  tickets,
		replies:  replies,
		citizen:  principalFor(citizen),
		other:    principalFor(other),
		support:  principalFor(support),
		admin:    principalFor(admin),
	}
}

func (fx *ticketFixture) open(t *testing.T, owner domain.Principal) *domain.Ticket {
	t.Helper()
	ticket, err := fx.service.Create(context.Background(), owner, "No llega la ayuda", "Registré la solicitud hace una semana y no hay respuesta.", nil)
	require.NoError(t, err)
	return ticket
}

func TestTicketCreate(t *testing.T) {
	fx := newTicketFixture(t)

	ticket := fx.open(t, fx.citizen)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, fx.citizen.AccountID, ticket.OwnerID)
	assert.Nil(t, ticket.HelpRequestID)
}

func TestTicketCreateValidation(t *testing.T) {
	fx := newTicketFixture(t)

	_, err := fx.service.Create(context.Background(), fx.citizen, "  ", "", nil)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Contains(t, domainErr.Details, "subject")
	assert.Contains(t, domainErr.Details, "description")
}

func TestTicketCreateWithHelpRequestReference(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()

	request, err := fx.requests.Create(ctx, fx.citizen, validHelpRequestInput())
	require.NoError(t, err)

	t.Run("owner may reference their own request", func(t *testing.T) {
		ticket, err := fx.service.Create(ctx, fx.citizen, "Estado de mi solicitud", "¿Cuándo la revisan?", &request.ID)
		require.NoError(t, err)
		require.NotNil(t, ticket.HelpRequestID)
		assert.Equal(t, request.ID, *ticket.HelpRequestID)
	})

	t.Run("another citizen referencing it gets not found", func(t *testing.T) {
		_, err := fx.service.Create(ctx, fx.other, "Estado", "Consulta", &request.ID)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	})

	t.Run("unknown reference gets not found", func(t *testing.T) {
		missing := "missing"
		_, err := fx.service.Create(ctx, fx.citizen, "Estado", "Consulta", &missing)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	})
}

func TestTicketGetVisibility(t *testing.T) {
	fx := newTicketFixture(t)
	ticket := fx.open(t, fx.citizen)

	for _, principal := range []domain.Principal{fx.citizen, fx.support, fx.admin} {
		detail, err := fx.service.Get(context.Background(), principal, ticket.ID)
		require.NoError(t, err)
		assert.Equal(t, ticket.ID, detail.Ticket.ID)
		assert.Equal(t, "Maria Lopez", detail.OwnerName)
	}

	_, err := fx.service.Get(context.Background(), fx.other, ticket.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestTicketReplyValidation(t *testing.T) {
	fx := newTicketFixture(t)
	ticket := fx.open(t, fx.citizen)

	tests := []struct {
		name    string
		message string
	}{
		{name: "empty", message: ""},
		{name: "whitespace only", message: "   \n\t"},
		{name: "too long", message: strings.Repeat("a", 501)},
		{name: "too long multibyte", message: strings.Repeat("ñ", 501)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := fx.service.Reply(context.Background(), fx.citizen, ticket.ID, tt.message)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
		})
	}
	assert.Zero(t, fx.replies.countFor(ticket.ID))
}

func TestTicketReplyAtMaxLength(t *testing.T) {
	fx := newTicketFixture(t)
	ticket := fx.open(t, fx.citizen)

	reply, _, err := fx.service.Reply(context.Background(), fx.citizen, ticket.ID, strings.Repeat("a", 500))
	require.NoError(t, err)
	assert.Len(t, reply.Message, 500)

	// the bound counts characters, so accented text within it is accepted
	// even though its byte length exceeds 500
	accented := strings.Repeat("ñ", 300)
	reply, _, err = fx.service.Reply(context.Background(), fx.citizen, ticket.ID, accented)
	require.NoError(t, err)
	assert.Equal(t, accented, reply.Message)

	_, _, err = fx.service.Reply(context.Background(), fx.citizen, ticket.ID, strings.Repeat("ñ", 500))
	require.NoError(t, err)
}

func TestTicketReplyForbiddenForStrangers(t *testing.T) {
	fx := newTicketFixture(t)
	ticket := fx.open(t, fx.citizen)

	_, _, err := fx.service.Reply(context.Background(), fx.other, ticket.ID, "yo también")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	assert.Zero(t, fx.replies.countFor(ticket.ID))
}

func TestTicketReplyStatusSideEffects(t *testing.T) {
	tests := []struct {
		name     string
		from     domain.TicketStatus
		author   func(*ticketFixture) domain.Principal
		want     domain.TicketStatus
		wantCode string
	}{
		{
			name:   "staff reply picks up an open ticket",
			from:   domain.TicketStatusOpen,
			author: func(fx *ticketFixture) domain.Principal { return fx.support },
			want:   domain.TicketStatusInProgress,
		},
		{
			name:   "staff reply keeps in progress",
			from:   domain.TicketStatusInProgress,
			author: func(fx *ticketFixture) domain.Principal { return fx.support },
			want:   domain.TicketStatusInProgress,
		},
		{
			name:   "staff reply reopens a closed ticket",
			from:   domain.TicketStatusClosed,
			author: func(fx *ticketFixture) domain.Principal { return fx.admin },
			want:   domain.TicketStatusOpen,
		},
		{
			name:   "owner reply keeps open",
			from:   domain.TicketStatusOpen,
			author: func(fx *ticketFixture) domain.Principal { return fx.citizen },
			want:   domain.TicketStatusOpen,
		},
		{
			name:   "owner reply bounces in progress back to open",
			from:   domain.TicketStatusInProgress,
			author: func(fx *ticketFixture) domain.Principal { return fx.citizen },
			want:   domain.TicketStatusOpen,
		},
		{
			name:     "owner reply to a closed ticket is rejected",
			from:     domain.TicketStatusClosed,
			author:   func(fx *ticketFixture) domain.Principal { return fx.citizen },
			wantCode: apperrors.CodeInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newTicketFixture(t)
			ctx := context.Background()
			ticket := fx.open(t, fx.citizen)
			require.NoError(t, fx.tickets.UpdateStatus(ctx, ticket.ID, tt.from))

			reply, updated, err := fx.service.Reply(ctx, tt.author(fx), ticket.ID, "seguimiento")
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, tt.wantCode))
				assert.Zero(t, fx.replies.countFor(ticket.ID), "a rejected reply must not be stored")
				stored, getErr := fx.tickets.GetByID(ctx, ticket.ID)
				require.NoError(t, getErr)
				assert.Equal(t, tt.from, stored.Status, "a rejected reply must not move the status")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "seguimiento", reply.Message)
			assert.Equal(t, tt.want, updated.Status)
			assert.Equal(t, 1, fx.replies.countFor(ticket.ID))
		})
	}
}

func TestTicketReplyThreadOrder(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()
	ticket := fx.open(t, fx.citizen)

	_, _, err := fx.service.Reply(ctx, fx.citizen, ticket.ID, "primera")
	require.NoError(t, err)
	_, _, err = fx.service.Reply(ctx, fx.support, ticket.ID, "segunda")
	require.NoError(t, err)

	detail, err := fx.service.Get(ctx, fx.citizen, ticket.ID)
	require.NoError(t, err)
	require.Len(t, detail.Replies, 2)
	assert.Equal(t, "primera", detail.Replies[0].Message)
	assert.Equal(t, "Maria Lopez", detail.Replies[0].AuthorName)
	assert.Equal(t, "segunda", detail.Replies[1].Message)
	assert.Equal(t, "Sofia Mesa", detail.Replies[1].AuthorName)
}

func TestTicketCloseAndReopen(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()
	ticket := fx.open(t, fx.citizen)

	closed, changed, err := fx.service.Close(ctx, fx.admin, ticket.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)

	again, changed, err := fx.service.Close(ctx, fx.support, ticket.ID)
	require.NoError(t, err)
	assert.False(t, changed, "closing twice is a no-op")
	assert.Equal(t, domain.TicketStatusClosed, again.Status)

	reopened, changed, err := fx.service.Reopen(ctx, fx.support, ticket.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, domain.TicketStatusOpen, reopened.Status)

	same, changed, err := fx.service.Reopen(ctx, fx.admin, ticket.ID)
	require.NoError(t, err)
	assert.False(t, changed, "reopening an open ticket is a no-op")
	assert.Equal(t, domain.TicketStatusOpen, same.Status)
}

func TestTicketReopenInProgressIsNoOp(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()
	ticket := fx.open(t, fx.citizen)
	require.NoError(t, fx.tickets.UpdateStatus(ctx, ticket.ID, domain.TicketStatusInProgress))

	same, changed, err := fx.service.Reopen(ctx, fx.support, ticket.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, domain.TicketStatusInProgress, same.Status)
}

func TestTicketStatusChangeForbiddenForCitizens(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()
	ticket := fx.open(t, fx.citizen)

	_, _, err := fx.service.Close(ctx, fx.citizen, ticket.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, _, err = fx.service.Reopen(ctx, fx.citizen, ticket.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestTicketList(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()

	first := fx.open(t, fx.citizen)
	second := fx.open(t, fx.other)
	_, _, err := fx.service.Reply(ctx, fx.other, second.ID, "detalle adicional")
	require.NoError(t, err)

	t.Run("citizen sees only their own", func(t *testing.T) {
		items, err := fx.service.List(ctx, fx.citizen)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, first.ID, items[0].ID)
	})

	t.Run("staff see all, newest first, with reply counts", func(t *testing.T) {
		for _, principal := range []domain.Principal{fx.support, fx.admin} {
			items, err := fx.service.List(ctx, principal)
			require.NoError(t, err)
			require.Len(t, items, 2)
			assert.Equal(t, second.ID, items[0].ID)
			assert.Equal(t, "Jorge Rios", items[0].OwnerName)
			assert.Equal(t, 1, items[0].ReplyCount)
			assert.Equal(t, first.ID, items[1].ID)
			assert.Equal(t, 0, items[1].ReplyCount)
		}
	})
}

// The full escalation scenario: a citizen opens a ticket about a stalled help
// request, support picks it up, the citizen follows up, support closes and the
// thread survives a reopen.
func TestTicketEscalationFlow(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()

	request, err := fx.requests.Create(ctx, fx.citizen, validHelpRequestInput())
	require.NoError(t, err)

	ticket, err := fx.service.Create(ctx, fx.citizen, "Ayuda sin respuesta", "Mi solicitud sigue pendiente.", &request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)

	_, updated, err := fx.service.Reply(ctx, fx.support, ticket.ID, "Estamos revisando su caso.")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)

	_, updated, err = fx.service.Reply(ctx, fx.citizen, ticket.ID, "Gracias, quedo atenta.")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, updated.Status, "an owner follow-up asks for attention again")

	_, changed, err := fx.service.Close(ctx, fx.support, ticket.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	_, _, err = fx.service.Reply(ctx, fx.citizen, ticket.ID, "¿Puedo agregar algo más?")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidState))

	_, updated, err = fx.service.Reply(ctx, fx.support, ticket.ID, "Reabrimos para revisar su consulta.")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, updated.Status, "a staff reply reopens a closed ticket")

	detail, err := fx.service.Get(ctx, fx.citizen, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Replies, 3)
}
