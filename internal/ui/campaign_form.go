package ui

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"upsend/internal/campaign"
	"upsend/internal/db"
	"upsend/internal/model"
)

const (
	fieldSubject = iota
	fieldMode
	fieldSender
	fieldBody
	fieldTemplate
	fieldRecipients
	fieldCount
)

var formFields = [fieldCount]struct {
	label string
	rule  fieldRule
}{
	fieldSubject: {"Subject *", fieldRule{required: true, kind: fieldText}},
	fieldMode:    {"Mode *", fieldRule{required: true, kind: fieldChoice, choices: []string{string(campaign.Personalized), string(campaign.Bulk)}}},
	fieldSender:  {"Sender email *", fieldRule{required: true, kind: fieldEmail}},
	fieldBody:    {"Template text", fieldRule{kind: fieldText}},
	fieldTemplate: {"Template file (.txt/.html, replaces the text)", fieldRule{
		kind: fieldFile, extensions: campaign.TemplateExtensions,
	}},
	fieldRecipients: {"Recipients (.csv) *", fieldRule{
		required: true, kind: fieldFile, extensions: campaign.RecipientExtensions,
	}},
}

// CampaignFormModel prepares a draft campaign. Submission runs constraint
// validation first and is blocked while any field is invalid.
type CampaignFormModel struct {
	db        *sql.DB
	keys      FormKeyMap
	focused   int
	inputs    [fieldCount]textinput.Model
	body      textarea.Model
	files     map[int]*FileInput
	messages  [fieldCount]string
	validated bool
}

// NewCampaignFormModel creates an empty form with the sender prefilled.
func NewCampaignFormModel(database *sql.DB, senderEmail string) *CampaignFormModel {
	m := &CampaignFormModel{
		db:   database,
		keys: DefaultFormKeyMap(),
		files: map[int]*FileInput{
			fieldTemplate:   NewFileInput("template", "Drop a template file or type its path"),
			fieldRecipients: NewFileInput("recipients", "Drop a CSV file or type its path"),
		},
	}

	m.inputs[fieldSubject] = textinput.New()
	m.inputs[fieldSubject].Placeholder = "Welcome to the programme"
	m.inputs[fieldSubject].CharLimit = 200
	m.inputs[fieldSubject].Focus()

	m.inputs[fieldMode] = textinput.New()
	m.inputs[fieldMode].Placeholder = "personalized or bulk"
	m.inputs[fieldMode].CharLimit = 20
	m.inputs[fieldMode].ShowSuggestions = true
	m.inputs[fieldMode].SetSuggestions(formFields[fieldMode].rule.choices)
	m.inputs[fieldMode].KeyMap.AcceptSuggestion = key.NewBinding(key.WithKeys("right"))
	m.inputs[fieldMode].SetValue(string(campaign.Personalized))

	m.inputs[fieldSender] = textinput.New()
	m.inputs[fieldSender].Placeholder = "you@example.com"
	m.inputs[fieldSender].CharLimit = 254
	m.inputs[fieldSender].SetValue(senderEmail)

	m.body = textarea.New()
	m.body.Placeholder = "Hi <Name>,\n\nType the message here, or choose a template file below."
	m.body.CharLimit = 10000
	m.body.ShowLineNumbers = false
	m.body.SetWidth(60)
	m.body.SetHeight(5)

	return m
}

// Value returns the trimmed value of field i.
func (m *CampaignFormModel) Value(i int) string {
	if i == fieldBody {
		return strings.TrimSpace(m.body.Value())
	}
	if f, ok := m.files[i]; ok {
		return f.Value()
	}
	return strings.TrimSpace(m.inputs[i].Value())
}

// SetValue sets field i.
func (m *CampaignFormModel) SetValue(i int, v string) {
	if i == fieldBody {
		m.body.SetValue(v)
		return
	}
	if f, ok := m.files[i]; ok {
		f.SetValue(v)
		return
	}
	m.inputs[i].SetValue(v)
}

// Focused is the index of the focused field.
func (m *CampaignFormModel) Focused() int { return m.focused }

// Message is the inline validation message under field i.
func (m *CampaignFormModel) Message(i int) string { return m.messages[i] }

// Validated reports whether a submit has been attempted.
func (m *CampaignFormModel) Validated() bool { return m.validated }

// Update handles all messages.
func (m CampaignFormModel) Update(msg tea.Msg) (CampaignFormModel, tea.Cmd) {
	if _, ok := msg.(fileDropSettledMsg); ok {
		for _, f := range m.files {
			f.Update(msg)
		}
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Cancel):
		return m, func() tea.Msg { return model.FormCancelledMsg{} }
	case key.Matches(keyMsg, m.keys.Save):
		return m, m.submit()
	case m.moves(keyMsg, m.keys.NextField):
		return m, m.focus((m.focused + 1) % fieldCount)
	case m.moves(keyMsg, m.keys.PrevField):
		return m, m.focus((m.focused + fieldCount - 1) % fieldCount)
	}

	var cmd tea.Cmd
	if m.focused == fieldBody {
		m.body, cmd = m.body.Update(keyMsg)
		// Typed text decides whether a template file is still needed.
		m.recheck(fieldTemplate)
	} else if f, ok := m.files[m.focused]; ok {
		cmd = f.Update(keyMsg)
	} else {
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(keyMsg)
	}
	m.recheck(m.focused)
	return m, cmd
}

// moves reports whether k switches fields. Inside the template text the
// arrow keys move the cursor instead.
func (m *CampaignFormModel) moves(k tea.KeyMsg, b key.Binding) bool {
	if k.Paste || !key.Matches(k, b) {
		return false
	}
	return m.focused != fieldBody || (k.Type != tea.KeyUp && k.Type != tea.KeyDown)
}

// focus moves focus to field i. Leaving an email field checks its format;
// an empty one is only reported on submit.
func (m *CampaignFormModel) focus(i int) tea.Cmd {
	prev := m.focused
	switch {
	case prev == fieldBody:
		m.body.Blur()
	case m.files[prev] != nil:
		m.files[prev].Blur()
	default:
		m.inputs[prev].Blur()
	}
	if m.validated {
		m.check(prev)
	} else if formFields[prev].rule.kind == fieldEmail {
		m.checkFormat(prev)
	}

	m.focused = i
	if i == fieldBody {
		return m.body.Focus()
	}
	if f, ok := m.files[i]; ok {
		return f.Focus()
	}
	return m.inputs[i].Focus()
}

// rule is the constraint set of field i. The template file is required only
// while no template text has been typed.
func (m *CampaignFormModel) rule(i int) fieldRule {
	r := formFields[i].rule
	if i == fieldTemplate && m.Value(fieldBody) == "" {
		r.required = true
	}
	return r
}

// check recomputes the inline message of field i and reports validity.
func (m *CampaignFormModel) check(i int) bool {
	m.messages[i] = validationMessage(m.rule(i), m.Value(i))
	return m.messages[i] == ""
}

// checkFormat is check without the required constraint.
func (m *CampaignFormModel) checkFormat(i int) {
	r := m.rule(i)
	r.required = false
	m.messages[i] = validationMessage(r, m.Value(i))
}

// recheck keeps the message of field i current after an edit. Before the
// first submit only a message already shown is refreshed, and only for format.
func (m *CampaignFormModel) recheck(i int) {
	switch {
	case m.validated:
		m.check(i)
	case m.messages[i] != "":
		m.checkFormat(i)
	}
}

// validate checks every field and returns the first invalid index, or -1.
func (m *CampaignFormModel) validate() int {
	first := -1
	for i := 0; i < fieldCount; i++ {
		if !m.check(i) && first < 0 {
			first = i
		}
	}
	return first
}

func (m *CampaignFormModel) submit() tea.Cmd {
	m.validated = true
	if first := m.validate(); first >= 0 {
		return m.focus(first)
	}

	mode, err := campaign.ParseMode(m.Value(fieldMode))
	if err != nil {
		return func() tea.Msg { return model.ErrorMsg{Err: err} }
	}
	req := campaign.Request{
		Subject:        m.Value(fieldSubject),
		Mode:           mode,
		Template:       m.Value(fieldBody),
		TemplateFile:   m.Value(fieldTemplate),
		RecipientsFile: m.Value(fieldRecipients),
	}
	sender := m.Value(fieldSender)
	database := m.db

	return func() tea.Msg {
		draft, err := campaign.Prepare(req)
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to prepare campaign: %w", err)}
		}

		nc := model.NewCampaign{
			Ref:          uuid.NewString(),
			Subject:      req.Subject,
			Sender:       sender,
			Mode:         string(mode),
			TemplateFile: req.TemplateFile,
			CSVFile:      req.RecipientsFile,
			Total:        draft.Batch.Total(),
			Status:       model.StatusDraft,
		}
		id, err := db.InsertCampaign(database, nc)
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to save campaign: %w", err)}
		}
		saved, err := db.GetCampaign(database, id)
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to reload campaign: %w", err)}
		}

		return model.CampaignSavedMsg{Campaign: saved, Batch: draft.Batch, Preview: draft.Preview()}
	}
}

// View renders the form.
func (m *CampaignFormModel) View(width, height int) string {
	fieldWidth := min(width-4, 72)
	fields := make([]string, 0, fieldCount)
	for i := 0; i < fieldCount; i++ {
		var body string
		dragOver := false
		if i == fieldBody {
			m.body.SetWidth(max(fieldWidth-4, 10))
			body = m.body.View()
		} else if f, ok := m.files[i]; ok {
			body = lipgloss.JoinVertical(lipgloss.Left, f.View(), HelpDescStyle.Render("↳ "+f.Label()))
			dragOver = f.DragOver()
		} else {
			body = m.inputs[i].View()
		}
		fields = append(fields, renderFormField(formFields[i].label, body, fieldState{
			focused:  i == m.focused,
			invalid:  m.messages[i] != "",
			dragOver: dragOver,
			message:  m.messages[i],
		}, fieldWidth))
	}

	title := LabelStyle.Render("New campaign")
	hint := HelpDescStyle.Render("Drop files onto the terminal to fill a file field. Placeholders look like <Name>.")
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{title, hint, ""}, fields...)...)
}

type fieldState struct {
	focused  bool
	invalid  bool
	dragOver bool
	message  string
}

func renderFormField(label, body string, st fieldState, width int) string {
	style := BorderStyle
	switch {
	case st.dragOver:
		style = DragOverBorderStyle
	case st.invalid:
		style = InvalidBorderStyle
	case st.focused:
		style = ActiveBorderStyle
	}

	parts := []string{LabelStyle.Render(label), body}
	if st.message != "" {
		parts = append(parts, FieldErrorStyle.Render(st.message))
	}
	return style.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
