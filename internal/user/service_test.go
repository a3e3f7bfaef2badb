package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/frahmantamala/procurement-inventory/internal"
	"github.com/frahmantamala/procurement-inventory/internal/audit"
	"github.com/frahmantamala/procurement-inventory/internal/auth"
	"github.com/frahmantamala/procurement-inventory/internal/core/access"
	"github.com/frahmantamala/procurement-inventory/internal/user"
	"github.com/frahmantamala/procurement-inventory/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

type mockRepository struct {
	users  map[int64]*user.User
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: map[int64]*user.User{}, nextID: 1}
}

func (m *mockRepository) List(ctx context.Context) ([]*user.User, error) {
	out := make([]*user.User, 0, len(m.users))
	for id := int64(1); id < m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, user.ErrUserNotFound
}

func (m *mockRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *mockRepository) Create(ctx context.Context, u *user.User) error {
	u.ID = m.nextID
	m.nextID++
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockRepository) Update(ctx context.Context, u *user.User) error {
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

type linkCall struct {
	userID int64
	invite bool
}

type mockLinks struct {
	calls []linkCall
	err   error
}

func (m *mockLinks) IssueResetLink(ctx context.Context, u *auth.User, invite bool) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.calls = append(m.calls, linkCall{userID: u.ID, invite: invite})
	return "http://app.local/reset-password/abc", nil
}

type recordedAudit struct {
	entries []audit.Entry
}

func (r *recordedAudit) Record(ctx context.Context, e audit.Entry) {
	r.entries = append(r.entries, e)
}

func ptr[T any](v T) *T { return &v }

var _ = Describe("User Service", func() {
	var (
		repo     *mockRepository
		links    *mockLinks
		recorder *recordedAudit
		service  *user.Service
		adminCtx context.Context
		admin    *user.User
	)

	BeforeEach(func() {
		repo = newMockRepository()
		links = &mockLinks{}
		recorder = &recordedAudit{}
		service = user.NewService(repo, links, recorder, logger.Discard(), bcrypt.MinCost, true)

		admin = &user.User{Name: "Ada", Email: "ada@corp.io", Role: access.RoleAdmin, IsActive: true}
		Expect(repo.Create(context.Background(), admin)).To(Succeed())
		adminCtx = internal.ContextWithPrincipal(context.Background(), admin.Principal())
	})

	Describe("Create", func() {
		It("creates an active procurement user and sends an invite", func() {
			resp, err := service.Create(adminCtx, user.CreateUserDTO{Name: "Pat", Email: "Pat@Corp.io"})

			Expect(err).NotTo(HaveOccurred())
			Expect(resp.User.Email).To(Equal("pat@corp.io"))
			Expect(resp.User.Role).To(Equal(access.RoleProcurement))
			Expect(resp.User.IsActive).To(BeTrue())
			Expect(resp.InviteLink).NotTo(BeEmpty())

			Expect(links.calls).To(ConsistOf(linkCall{userID: resp.User.ID, invite: true}))
			Expect(repo.users[resp.User.ID].PasswordHash).NotTo(BeEmpty())

			Expect(recorder.entries).To(HaveLen(1))
			Expect(recorder.entries[0].Action).To(Equal(audit.ActionCreate))
			Expect(recorder.entries[0].EntityType).To(Equal(audit.EntityUser))
		})

		It("honours an explicit role and inactive flag", func() {
			resp, err := service.Create(adminCtx, user.CreateUserDTO{Name: "Aud", Email: "aud@corp.io", Role: "AUDITOR", IsActive: ptr(false)})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.User.Role).To(Equal(access.RoleAuditor))
			Expect(resp.User.IsActive).To(BeFalse())
		})

		It("rejects duplicate emails with a conflict", func() {
			_, err := service.Create(adminCtx, user.CreateUserDTO{Name: "Ada 2", Email: "ada@corp.io"})
			Expect(errors.Is(err, user.ErrUserExists)).To(BeTrue())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.StatusCode).To(Equal(409))
		})

		It("rejects unknown roles", func() {
			_, err := service.Create(adminCtx, user.CreateUserDTO{Name: "X", Email: "x@corp.io", Role: "OWNER"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})
	})

	Describe("Update", func() {
		var target *user.User

		BeforeEach(func() {
			target = &user.User{Name: "Pat", Email: "pat@corp.io", Role: access.RoleProcurement, IsActive: true}
			Expect(repo.Create(context.Background(), target)).To(Succeed())
		})

		It("applies only the given fields", func() {
			resp, err := service.Update(adminCtx, target.ID, user.UpdateUserDTO{Role: ptr("AUDITOR"), IsActive: ptr(false)})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.User.Name).To(Equal("Pat"))
			Expect(resp.User.Role).To(Equal(access.RoleAuditor))
			Expect(resp.User.IsActive).To(BeFalse())
		})

		It("refuses to update the caller's own account", func() {
			_, err := service.Update(adminCtx, admin.ID, user.UpdateUserDTO{Name: ptr("Boss")})
			Expect(errors.Is(err, user.ErrSelfUpdate)).To(BeTrue())
			Expect(err.Error()).To(Equal("cannot update your own account"))
		})

		It("rejects an email owned by someone else", func() {
			_, err := service.Update(adminCtx, target.ID, user.UpdateUserDTO{Email: ptr("ada@corp.io")})
			Expect(errors.Is(err, user.ErrEmailInUse)).To(BeTrue())
		})

		It("returns not found for unknown users", func() {
			_, err := service.Update(adminCtx, 999, user.UpdateUserDTO{Name: ptr("Nobody")})
			Expect(errors.Is(err, user.ErrUserNotFound)).To(BeTrue())
		})
	})

	Describe("SendPasswordReset", func() {
		It("issues a reset link and audits it", func() {
			resp, err := service.SendPasswordReset(adminCtx, admin.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.ResetLink).NotTo(BeEmpty())
			Expect(links.calls).To(ConsistOf(linkCall{userID: admin.ID, invite: false}))
			Expect(recorder.entries[0].Action).To(Equal(audit.ActionResetPassword))
		})

		It("does not audit when the link could not be issued", func() {
			links.err = internal.NewInternalError("boom", nil)
			_, err := service.SendPasswordReset(adminCtx, admin.ID)
			Expect(err).To(HaveOccurred())
			Expect(recorder.entries).To(BeEmpty())
		})
	})

	Describe("List", func() {
		It("never exposes credentials", func() {
			users, err := service.List(adminCtx)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
			Expect(users[0].Email).To(Equal("ada@corp.io"))
		})
	})
})
