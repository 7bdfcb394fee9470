package mail

import (
	"context"
	"fmt"
	"strings"

	mail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/titandealer/portal/internal/core/port"
	"github.com/titandealer/portal/internal/infra/config"
	"github.com/titandealer/portal/internal/infra/logger"
)

// ErrNotConfigured indicates the SMTP account credentials are missing.
var ErrNotConfigured = fmt.Errorf("mail: smtp credentials not configured")

// Mailer delivers account email over SMTP. It implements port.Notifier.
type Mailer struct {
	client   *mail.Client
	from     string
	fromName string
	logger   *zap.Logger
}

// NewMailer constructs an SMTP-backed notifier. Returns ErrNotConfigured when
// credentials are absent so callers can degrade to an unavailable channel
// instead of failing startup.
func NewMailer(cfg config.SMTPSettings, log *zap.Logger) (*Mailer, error) {
	if strings.TrimSpace(cfg.Username) == "" || strings.TrimSpace(cfg.Password) == "" {
		return nil, ErrNotConfigured
	}
	if log == nil {
		log = zap.NewNop()
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &Mailer{
		client:   client,
		from:     cfg.Username,
		fromName: cfg.FromName,
		logger:   log,
	}, nil
}

// Available verifies the SMTP connection can be established.
func (m *Mailer) Available(ctx context.Context) error {
	if m == nil || m.client == nil {
		return ErrNotConfigured
	}

	if err := m.client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	if err := m.client.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return nil
}

// SendWelcome emails freshly generated credentials to a new dealer account.
func (m *Mailer) SendWelcome(ctx context.Context, to, username, password string) error {
	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; padding: 20px; max-width: 600px; margin: 0 auto;">
  <h2>Welcome to Titan Dealer App!</h2>
  <p>Hello Dealer,</p>
  <p>Your account has been successfully created. Below are your login credentials:</p>
  <ul>
    <li><strong>Username:</strong> %s</li>
    <li><strong>Password:</strong> %s</li>
  </ul>
  <p>Please keep these credentials secure and do not share them with anyone.</p>
  <p>If you did not request this account, please contact support immediately.</p>
</div>`, username, password)

	return m.send(ctx, to, "Welcome to Titan Dealer App!", body)
}

// SendResetLink emails a password reset link containing the raw token.
func (m *Mailer) SendResetLink(ctx context.Context, to, resetURL string) error {
	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; padding: 20px; max-width: 600px; margin: 0 auto;">
  <h2>Password Reset Request</h2>
  <p>Hello,</p>
  <p>You have requested to reset your password. Click the link below to proceed:</p>
  <p><a href="%s">Reset Password</a></p>
  <p>If you didn't request this reset, please ignore this email.</p>
  <p>This link will expire in 1 hour.</p>
</div>`, resetURL)

	return m.send(ctx, to, "Password Reset Request", body)
}

// SendAdminReset emails a replacement password issued by an administrator.
func (m *Mailer) SendAdminReset(ctx context.Context, to, username, password string) error {
	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; padding: 20px; max-width: 600px; margin: 0 auto;">
  <h2>Password Reset</h2>
  <p>Hello Dealer,</p>
  <p>Your password has been reset by the administrator. Below are your new login credentials:</p>
  <ul>
    <li><strong>Username:</strong> %s</li>
    <li><strong>Password:</strong> %s</li>
  </ul>
  <p>Please change this password after logging in for security reasons.</p>
</div>`, username, password)

	return m.send(ctx, to, "Password Reset by Admin", body)
}

func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	m.logger.Info("mail delivered",
		zap.String("to", logger.MaskEmail(to)),
		zap.String("subject", subject),
	)

	return nil
}

// UnavailableNotifier is the degraded channel used when SMTP credentials are
// missing. Every call reports the channel as unconfigured.
type UnavailableNotifier struct{}

func (UnavailableNotifier) Available(context.Context) error {
	return ErrNotConfigured
}

func (UnavailableNotifier) SendWelcome(context.Context, string, string, string) error {
	return ErrNotConfigured
}

func (UnavailableNotifier) SendResetLink(context.Context, string, string) error {
	return ErrNotConfigured
}

func (UnavailableNotifier) SendAdminReset(context.Context, string, string, string) error {
	return ErrNotConfigured
}

var (
	_ port.Notifier = (*Mailer)(nil)
	_ port.Notifier = UnavailableNotifier{}
)
