// internal/ui/screen/operation.go
package screen

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gagliardetto/solana-go"

	"github.com/oyevasu/spl-token-studio/internal/domain"
	"github.com/oyevasu/spl-token-studio/internal/poller"
	"github.com/oyevasu/spl-token-studio/internal/service"
	"github.com/oyevasu/spl-token-studio/internal/token"
	"github.com/oyevasu/spl-token-studio/internal/ui"
	"github.com/oyevasu/spl-token-studio/internal/ui/component"
	"github.com/oyevasu/spl-token-studio/internal/ui/router"
	"github.com/oyevasu/spl-token-studio/internal/ui/style"
)

// operationDoneMsg carries the result of an operation started by a form.
type operationDoneMsg struct {
	route ui.Route
	view  resultView
}

// sendableMsg carries the tokens the send form can offer.
type sendableMsg struct {
	tokens []poller.TokenBalance
	err    string
}

// resultView is the rendered outcome of one operation.
type resultView struct {
	OK          bool
	OperationID string
	Title       string
	Lines       []string
	ErrorKind   domain.ErrorKind
	Outcome     domain.Outcome
	Message     string
	URL         string
}

// OperationScreen is the form for one of create, mint, send or airdrop.
// While the operation runs, esc cancels it instead of leaving the screen.
type OperationScreen struct {
	route  ui.Route
	kind   domain.OperationKind
	svc    *ui.Services
	keyMap ui.KeyMap
	width  int
	height int

	title       string
	description string
	form        *component.Form
	helpBar     *component.HelpBar
	spinner     spinner.Model

	running   bool
	canceling bool
	cancel    context.CancelFunc
	startedAt time.Time
	opID      string
	result    *resultView

	sendable []poller.TokenBalance
	loadErr  string
}

// NewOperationScreen builds the form for route.
func NewOperationScreen(route ui.Route, svc *ui.Services) *OperationScreen {
	keyMap := ui.DefaultKeyMap()
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(style.DefaultPalette().Warning)

	s := &OperationScreen{
		route:   route,
		svc:     svc,
		keyMap:  keyMap,
		spinner: sp,
		helpBar: component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(route)),
	}

	form := component.NewForm()
	switch route {
	case ui.RouteCreateToken:
		s.kind = domain.OperationCreate
		s.title = "🪙 Create token"
		s.description = "Creates a new mint with your wallet as mint authority."
		form.AddField("name", component.FieldTypeText, "Name", false, "My Token").
			AddField("symbol", component.FieldTypeText, "Symbol", false, "MTK").
			AddField("decimals", component.FieldTypeNumber, "Decimals", false, strconv.Itoa(service.DefaultDecimals)).
			SetFieldValidation("decimals", validateDecimals)
	case ui.RouteMintToken:
		s.kind = domain.OperationMint
		s.title = "🏭 Mint tokens"
		s.description = "Mints to your own token account, creating it when needed."
		form.AddField("mint", component.FieldTypeText, "Mint address", true, "base58 mint address").
			AddField("amount", component.FieldTypeNumber, "Amount", true, "100").
			SetFieldValidation("mint", validateAddress).
			SetFieldValidation("amount", token.ValidateAmountText)
	case ui.RouteSendToken:
		s.kind = domain.OperationSend
		s.title = "📤 Send tokens"
		s.description = "Transfers to the recipient's associated token account."
		form.AddField("mint", component.FieldTypeSelect, "Token", true, "loading balances…").
			AddField("recipient", component.FieldTypeText, "Recipient wallet", true, "base58 wallet address").
			AddField("amount", component.FieldTypeNumber, "Amount", true, "1").
			SetFieldValidation("recipient", validateAddress).
			SetFieldValidation("amount", token.ValidateAmountText)
	case ui.RouteAirdrop:
		s.kind = domain.OperationAirdrop
		s.title = "💧 Request airdrop"
		s.description = fmt.Sprintf("Asks the %s faucet for SOL to pay fees.", svc.Tokens.Cluster())
		form.AddField("amount", component.FieldTypeNumber, "Amount (SOL)", true, "1").
			SetFieldValidation("amount", token.ValidateAmountText)
	}
	s.form = form

	return s
}

// Init loads the sendable tokens for the send form
func (s *OperationScreen) Init() tea.Cmd {
	if s.route == ui.RouteSendToken && !s.running {
		return s.loadSendable()
	}
	return nil
}

// Route returns the route of this form
func (s *OperationScreen) Route() ui.Route {
	return s.route
}

// BlocksBack keeps the screen while an operation is in flight.
func (s *OperationScreen) BlocksBack() bool {
	return s.running
}

// Update handles form input and operation progress
func (s *OperationScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !s.running {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case sendableMsg:
		s.applySendable(msg)
		return s, nil

	case operationDoneMsg:
		if msg.route != s.route {
			return s, nil
		}
		return s, s.finish(msg.view)

	case ui.OperationMsg:
		op := msg.Operation
		if s.running && s.opID == "" && op.Kind == s.kind && !op.StartedAt.Before(s.startedAt) {
			s.opID = op.ID
		}
		return s, nil

	case tea.KeyMsg:
		if s.running {
			if key.Matches(msg, s.keyMap.Back) && s.cancel != nil && !s.canceling {
				s.canceling = true
				s.cancel()
			}
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.form, cmd = s.form.Update(msg)
	if s.form.Submitted() {
		return s, tea.Batch(cmd, s.submit())
	}
	return s, cmd
}

// View renders the form with its status area
func (s *OperationScreen) View() string {
	sections := []string{
		style.TitleStyle.Render(s.title),
		style.MutedStyle.Render(s.description),
		"",
		s.form.View(),
	}
	if s.loadErr != "" {
		sections = append(sections, style.ErrorStyle.Render("⚠ "+s.loadErr))
	}
	if status := s.statusView(); status != "" {
		sections = append(sections, "", status)
	}
	sections = append(sections, s.helpBar.View())

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return style.Panel(strings.ToUpper(string(s.kind)), body, s.width, true)
}

// SetSize sets the screen dimensions
func (s *OperationScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	formWidth := width - 10
	if formWidth > 70 {
		formWidth = 70
	}
	s.form.SetWidth(formWidth)
	s.helpBar.SetWidth(width - 8)
}

func (s *OperationScreen) statusView() string {
	if s.running {
		text := "Preparing transaction…"
		if op, ok := s.svc.Cache.Operation(s.opID); ok {
			switch op.Status {
			case domain.StatusAwaitingSignature:
				text = "Waiting for wallet signature…"
			case domain.StatusSubmitting:
				text = "Submitted, waiting for confirmation…"
			}
		}
		if s.canceling {
			text = "Canceling…"
		}
		return s.spinner.View() + " " + text + style.MutedStyle.Render("  (esc to cancel)")
	}

	r := s.result
	if r == nil {
		return ""
	}
	if r.OK {
		lines := append([]string{style.SuccessStyle.Render("✅ " + r.Title)}, r.Lines...)
		if r.URL != "" {
			lines = append(lines, style.LinkStyle.Render(r.URL))
		}
		return strings.Join(lines, "\n")
	}

	if r.Outcome == domain.OutcomeUnknown {
		lines := []string{
			style.WarningStyle.Render("⚠ Status unknown: the transaction may still land. Check the explorer."),
			style.MutedStyle.Render(r.Message),
		}
		if r.URL != "" {
			lines = append(lines, style.LinkStyle.Render(r.URL))
		}
		return strings.Join(lines, "\n")
	}
	return style.ErrorStyle.Render("❌ "+humanKind(r.ErrorKind)) + "\n" + style.MutedStyle.Render(r.Message)
}

func (s *OperationScreen) submit() tea.Cmd {
	if !s.form.Validate() {
		return nil
	}

	values := s.form.GetValues()
	ctx, cancel := context.WithCancel(s.svc.Context)
	s.cancel = cancel
	s.running = true
	s.canceling = false
	s.startedAt = time.Now()
	s.opID = ""
	s.result = nil
	s.form.SetDisabled(true)

	run := s.runner(values)
	route := s.route
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		return operationDoneMsg{route: route, view: run(ctx)}
	})
}

// runner binds the form values to the service call for this route.
func (s *OperationScreen) runner(values map[string]string) func(ctx context.Context) resultView {
	tokens := s.svc.Tokens

	switch s.route {
	case ui.RouteCreateToken:
		req := service.CreateTokenRequest{Name: values["name"], Symbol: values["symbol"], Decimals: values["decimals"]}
		return func(ctx context.Context) resultView {
			return createdView(tokens, tokens.CreateToken(ctx, req))
		}
	case ui.RouteMintToken:
		req := service.MintTokenRequest{Mint: values["mint"], Amount: values["amount"]}
		return func(ctx context.Context) resultView {
			return receiptView(tokens, tokens.MintToken(ctx, req))
		}
	case ui.RouteSendToken:
		req := service.SendTokenRequest{Mint: values["mint"], Recipient: values["recipient"], Amount: values["amount"]}
		for _, t := range s.sendable {
			if t.Mint.String() == req.Mint {
				decimals := t.Decimals
				req.Decimals = &decimals
			}
		}
		return func(ctx context.Context) resultView {
			return receiptView(tokens, tokens.SendToken(ctx, req))
		}
	default:
		amount := values["amount"]
		return func(ctx context.Context) resultView {
			return airdropView(tokens, tokens.RequestAirdrop(ctx, amount))
		}
	}
}

func (s *OperationScreen) finish(view resultView) tea.Cmd {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.running = false
	s.canceling = false
	s.result = &view
	s.opID = view.OperationID
	s.form.SetDisabled(false)

	if !view.OK {
		return nil
	}
	s.form.Reset()
	if s.svc.Refresh != nil {
		s.svc.Refresh()
	}
	if s.route == ui.RouteSendToken {
		return s.loadSendable()
	}
	return nil
}

func (s *OperationScreen) loadSendable() tea.Cmd {
	tokens := s.svc.Tokens
	ctx := s.svc.Context
	return func() tea.Msg {
		res := tokens.SendableTokens(ctx)
		if !res.OK {
			return sendableMsg{err: res.Message}
		}
		return sendableMsg{tokens: res.Value}
	}
}

func (s *OperationScreen) applySendable(msg sendableMsg) {
	if msg.err != "" {
		s.loadErr = "Could not load balances: " + msg.err
		return
	}
	s.loadErr = ""
	s.sendable = msg.tokens

	values := make([]string, 0, len(msg.tokens))
	labels := make([]string, 0, len(msg.tokens))
	for _, t := range msg.tokens {
		values = append(values, t.Mint.String())
		labels = append(labels, fmt.Sprintf("%s  balance %s", component.ShortAddress(t.Mint.String()), t.Display))
	}
	s.form.SetSelectOptions("mint", values, labels)
	if len(values) == 0 {
		s.loadErr = "No token with a positive balance to send"
	}
}

func createdView(tokens ui.TokenService, res domain.Result[service.CreatedToken]) resultView {
	if !res.OK {
		return failureView(tokens, res.OperationID, res.ErrorKind, res.Outcome, res.Message, res.Signature)
	}
	v := res.Value
	return resultView{
		OK:          true,
		OperationID: res.OperationID,
		Title:       fmt.Sprintf("Token %s created", displayName(v.Symbol, v.Name)),
		Lines: []string{
			"Mint:      " + v.Mint.String(),
			fmt.Sprintf("Decimals:  %d", v.Decimals),
			"Signature: " + v.Signature.String(),
		},
		URL: v.MintURL,
	}
}

func receiptView(tokens ui.TokenService, res domain.Result[service.Receipt]) resultView {
	if !res.OK {
		return failureView(tokens, res.OperationID, res.ErrorKind, res.Outcome, res.Message, res.Signature)
	}
	r := res.Value
	title := fmt.Sprintf("Minted %s", r.Display)
	if r.Kind == domain.OperationSend {
		title = fmt.Sprintf("Sent %s to %s", r.Display, component.ShortAddress(r.Recipient.String()))
	}
	lines := []string{
		"Mint:      " + r.Mint.String(),
		"Account:   " + r.Account.String(),
		"Signature: " + r.Signature.String(),
	}
	if n := len(r.CreatedAccounts); n > 0 {
		lines = append(lines, fmt.Sprintf("Created %d token account(s)", n))
	}
	return resultView{OK: true, OperationID: res.OperationID, Title: title, Lines: lines, URL: r.ExplorerURL}
}

func airdropView(tokens ui.TokenService, res domain.Result[service.Airdrop]) resultView {
	if !res.OK {
		return failureView(tokens, res.OperationID, res.ErrorKind, res.Outcome, res.Message, res.Signature)
	}
	return resultView{
		OK:          true,
		OperationID: res.OperationID,
		Title:       fmt.Sprintf("Airdrop of %s SOL confirmed", res.Value.SOL),
		Lines:       []string{"Signature: " + res.Value.Signature.String()},
		URL:         res.Value.ExplorerURL,
	}
}

func failureView(tokens ui.TokenService, id string, kind domain.ErrorKind, outcome domain.Outcome, message string, sig solana.Signature) resultView {
	v := resultView{
		OperationID: id,
		ErrorKind:   kind,
		Outcome:     outcome,
		Message:     message,
	}
	if sig != (solana.Signature{}) {
		v.URL = tokens.ExplorerTxURL(sig)
	}
	return v
}

func displayName(symbol, name string) string {
	switch {
	case symbol != "":
		return symbol
	case name != "":
		return name
	default:
		return "token"
	}
}

// humanKind turns an error kind into a short headline.
func humanKind(kind domain.ErrorKind) string {
	switch kind {
	case domain.KindSigningDenied:
		return "Signing declined"
	case domain.KindCanceled:
		return "Canceled"
	case domain.KindInsufficientBalance:
		return "Insufficient balance"
	case domain.KindLedgerUnavailable:
		return "Ledger unavailable"
	case domain.KindAirdropUnavailable:
		return "Airdrop unavailable"
	case domain.KindTransactionFailed:
		return "Transaction failed"
	}
	if kind == domain.KindNone {
		return "Failed"
	}
	var b strings.Builder
	for i, r := range string(kind) {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func validateAddress(text string) error {
	if _, err := solana.PublicKeyFromBase58(strings.TrimSpace(text)); err != nil {
		return errors.New("not a valid base58 address")
	}
	return nil
}

func validateDecimals(text string) error {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return errors.New("decimals must be a whole number")
	}
	return token.ValidateDecimals(n)
}
