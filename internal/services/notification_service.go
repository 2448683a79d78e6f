package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/stayware/leasing-service/internal/config"
	"github.com/stayware/leasing-service/internal/models"
	"github.com/stayware/leasing-service/internal/repositories"
	"github.com/stayware/leasing-service/internal/utils"
)

const inviteTokenTTL = 7 * 24 * time.Hour

const inviteEmailHTML = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Your tenant portal is ready</title></head>
<body style="font-family:Arial,sans-serif;color:#333">
  <h2>Welcome, %s!</h2>
  <p>Your lease is active and your tenant portal account is ready.</p>
  <p><a href="%s/invite/%s">Set up your account</a> (link valid for 7 days).</p>
  %s
  <p>— %s</p>
</body>
</html>`

/*
NotificationService delivers portal-invite credentials after a lease
activates. It is fire-and-forget from the state machine's point of view:
delivery problems are logged and never fail the activation.
*/
type NotificationService struct {
	cfg            *config.Config
	users          repositories.UserRepository
	sendgridClient *sendgrid.Client
	twilioClient   *twilio.RestClient
}

func NewNotificationService(cfg *config.Config, users repositories.UserRepository) *NotificationService {
	return &NotificationService{
		cfg:            cfg,
		users:          users,
		sendgridClient: sendgrid.NewSendClient(cfg.SendgridAPIKey),
		twilioClient: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		}),
	}
}

// SendPortalInvites issues credentials and delivers the invite to each user.
// Residents never get portal logins and are skipped.
func (s *NotificationService) SendPortalInvites(ctx context.Context, userIDs []uuid.UUID) {
	users, err := s.users.ListByIDs(ctx, userIDs)
	if err != nil {
		utils.Logger.WithError(err).Error("Portal invites: failed to load users")
		return
	}

	for _, u := range users {
		if u.Type == models.TenantTypeResident {
			continue
		}
		if err := s.inviteUser(ctx, u); err != nil {
			utils.Logger.WithError(err).Errorf("Portal invite failed for user %s", u.ID)
		}
	}
}

func (s *NotificationService) inviteUser(ctx context.Context, u *models.User) error {
	var tempPassword string

	// Only mint a password for first-time invitees; re-activation must not
	// rotate an existing credential.
	if u.Password == nil || *u.Password == "" {
		tempPassword = utils.RandomNumericString(6)
		hash, err := utils.HashPassword(tempPassword)
		if err != nil {
			return err
		}
		if err := s.users.SetPassword(ctx, u.ID, hash); err != nil {
			return err
		}
	}

	token := utils.RandomString(64)
	if err := s.users.SetInvite(ctx, u.ID, token, time.Now().Add(inviteTokenTTL)); err != nil {
		return err
	}

	if u.Email != nil && *u.Email != "" {
		if err := s.sendInviteEmail(u, token, tempPassword); err != nil {
			utils.Logger.WithError(err).Errorf("Failed to send invite email to %s", *u.Email)
		}
	}
	if u.Phone != nil && *u.Phone != "" {
		if err := s.sendInviteSMS(u, token); err != nil {
			utils.Logger.WithError(err).Errorf("Failed to send invite SMS to %s", *u.Phone)
		}
	}
	return nil
}

func (s *NotificationService) sendInviteEmail(u *models.User, token, tempPassword string) error {
	from := mail.NewEmail(config.OrganizationName, s.cfg.SendgridFromEmail)
	to := mail.NewEmail(u.FullName(), *u.Email)

	passwordBlock := ""
	if tempPassword != "" {
		passwordBlock = fmt.Sprintf("<p>Your temporary password: <b>%s</b></p>", tempPassword)
	}

	plain := fmt.Sprintf(
		"Welcome %s! Your tenant portal is ready: %s/invite/%s (valid 7 days).",
		u.FullName(), s.cfg.PortalURL, token,
	)
	html := fmt.Sprintf(inviteEmailHTML,
		u.FullName(), s.cfg.PortalURL, token, passwordBlock, config.OrganizationName)

	msg := mail.NewSingleEmail(from, "Your tenant portal is ready", to, plain, html)
	_, err := s.sendgridClient.Send(msg)
	return err
}

func (s *NotificationService) sendInviteSMS(u *models.User, token string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(*u.Phone)
	params.SetFrom(s.cfg.TwilioFromPhone)
	params.SetBody(fmt.Sprintf(
		"%s: your tenant portal is ready. Set up your account: %s/invite/%s",
		config.OrganizationName, s.cfg.PortalURL, token,
	))

	_, err := s.twilioClient.Api.CreateMessage(params)
	return err
}
