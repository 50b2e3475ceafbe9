package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rivo/tview"
	"github.com/rs/zerolog"
	"github.com/saylorsolutions/novault/cmd/internal/logging"
	"github.com/saylorsolutions/novault/cmd/internal/output"
	"github.com/saylorsolutions/novault/pkg/novault"
	"github.com/saylorsolutions/novault/pkg/session"
)

const (
	pageSites = "sites"
	pageForm  = "form"

	labelSessionPassword = "Session password"
	labelName            = "Name"
	labelFormat          = "Format"
	labelPin             = "Digits only"
	labelRevision        = "Revision"
	labelNotes           = "Notes"
)

// Model is everything the interactive loop works with.
type Model struct {
	Engine   *novault.Engine
	Settings novault.Settings
	Sites    novault.Sites
	Cache    *session.Cache
	Output   output.Deliverer
	Logger   zerolog.Logger
	// Save persists sites after one is added. Adding sites is disabled when it's nil.
	Save func(novault.Sites) error
}

// App is the interactive site picker.
// Selecting a site asks for the session password, then delivers the site's password.
type App struct {
	Model

	app    *tview.Application
	pages  *tview.Pages
	list   *tview.List
	status *tview.TextView
}

func New(m Model) *App {
	a := &App{
		Model:  m,
		app:    tview.NewApplication(),
		pages:  tview.NewPages(),
		list:   tview.NewList(),
		status: tview.NewTextView(),
	}
	a.status.SetDynamicColors(true)
	a.setStatus("Select a site, or press [yellow]q[-] to quit")

	a.refreshList()
	a.list.SetDoneFunc(a.Stop)
	a.list.SetBorder(true).SetTitle(" novault ")

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.list, 0, 1, true).
		AddItem(a.status, 1, 0, false)
	a.pages.AddPage(pageSites, layout, true, true)
	return a
}

func (a *App) refreshList() {
	a.list.Clear()
	for _, item := range siteItems(a.Sites) {
		name := item.name
		a.list.AddItem(item.name, item.notes, 0, func() {
			a.showUnlock(name)
		})
	}
	if a.Save != nil {
		a.list.AddItem("New site", "", 'n', a.showAddSite)
	}
	a.list.AddItem("Quit", "", 'q', a.Stop)
}

// Run blocks until the user quits.
func (a *App) Run() error {
	return a.app.SetRoot(a.pages, true).SetFocus(a.list).Run()
}

// Stop ends the loop and restores the terminal. It's safe to call from any goroutine.
func (a *App) Stop() {
	a.app.Stop()
}

func (a *App) showUnlock(name string) {
	form := tview.NewForm()
	form.AddPasswordField(labelSessionPassword, "", 24, '*', nil)
	form.AddButton("Get", func() {
		field := form.GetFormItemByLabel(labelSessionPassword).(*tview.InputField)
		sessionPassword := []byte(field.GetText())
		field.SetText("")
		a.closeForm()
		// Sites is only touched on the event goroutine.
		site, err := novault.Lookup(a.Sites, name)
		if err != nil {
			wipe(sessionPassword)
			a.setStatus(statusFor(name, err))
			return
		}
		a.setStatus(fmt.Sprintf("Deriving password for [yellow]%s[-]...", tview.Escape(name)))
		go a.retrieve(name, site, sessionPassword)
	})
	a.showForm(form, fmt.Sprintf(" %s ", tview.Escape(name)), 7)
}

func (a *App) showAddSite() {
	form := newSiteForm()
	form.AddButton("Save", func() {
		spec, err := specFromForm(form)
		if err == nil {
			err = a.addSite(spec)
		}
		if err != nil {
			a.setStatus(fmt.Sprintf("[red]Error:[-] %s", tview.Escape(err.Error())))
			return
		}
		a.closeForm()
		a.setStatus(fmt.Sprintf("[green]Added %s[-]", tview.Escape(spec.Name)))
	})
	a.showForm(form, " New site ", 15)
}

func (a *App) showForm(form *tview.Form, title string, height int) {
	form.AddButton("Cancel", a.closeForm)
	form.SetCancelFunc(a.closeForm)
	form.SetBorder(true).SetTitle(title)
	a.pages.AddPage(pageForm, center(form, 50, height), true, true)
	a.app.SetFocus(form)
}

func (a *App) closeForm() {
	if a.pages.HasPage(pageForm) {
		a.pages.RemovePage(pageForm)
	}
	a.app.SetFocus(a.list)
}

// addSite validates and saves a new site, then shows it in the list.
func (a *App) addSite(spec novault.SiteSpec) error {
	sites, _, err := novault.SetSite(a.Settings, a.Sites, spec, false)
	if err != nil {
		return err
	}
	if err := a.Save(sites); err != nil {
		return err
	}
	a.Sites = sites
	a.refreshList()
	logging.Event(a.Logger, zerolog.InfoLevel, "site.set").Str("site", spec.Name).Uint64("rev", spec.Revision).Msg("site saved")
	return nil
}

func newSiteForm() *tview.Form {
	return tview.NewForm().
		AddInputField(labelName, "", 32, nil, nil).
		AddInputField(labelFormat, novault.DefaultFormat, 32, nil, nil).
		AddCheckbox(labelPin, false, nil).
		AddInputField(labelRevision, "0", 8, tview.InputFieldInteger, nil).
		AddInputField(labelNotes, "", 32, nil, nil)
}

func specFromForm(form *tview.Form) (novault.SiteSpec, error) {
	text := func(label string) string {
		return form.GetFormItemByLabel(label).(*tview.InputField).GetText()
	}
	spec := novault.SiteSpec{
		Name:  strings.TrimSpace(text(labelName)),
		Fmt:   text(labelFormat),
		Pin:   form.GetFormItemByLabel(labelPin).(*tview.Checkbox).IsChecked(),
		Notes: text(labelNotes),
	}
	if rev := strings.TrimSpace(text(labelRevision)); rev != "" {
		n, err := strconv.ParseUint(rev, 10, 64)
		if err != nil {
			return spec, fmt.Errorf("revision must be a non-negative number: %w", err)
		}
		spec.Revision = n
	}
	return spec, nil
}

// retrieve runs off the event goroutine, since derivation is slow by design.
func (a *App) retrieve(name string, site novault.Site, sessionPassword []byte) {
	err := a.deliver(site, sessionPassword)
	wipe(sessionPassword)
	a.logResult(name, err)
	a.app.QueueUpdateDraw(func() {
		a.setStatus(statusFor(name, err))
	})
}

func (a *App) deliver(site novault.Site, sessionPassword []byte) error {
	master, err := a.Cache.Unlock(sessionPassword)
	if err != nil {
		return err
	}
	defer master.Destroy()
	pass, err := a.Engine.GetPassword(a.Settings, site, master)
	if err != nil {
		return err
	}
	defer pass.Destroy()
	return a.Output.Deliver(context.Background(), pass)
}

func (a *App) logResult(name string, err error) {
	if err == nil {
		logging.Event(a.Logger, zerolog.InfoLevel, "site.get").Str("site", name).Msg("password delivered")
		return
	}
	var mismatch *session.MismatchError
	if errors.As(err, &mismatch) {
		logging.Event(a.Logger, zerolog.WarnLevel, "session.mismatch").Int("remaining", mismatch.Remaining).Msg("wrong session password")
		return
	}
	logging.Event(a.Logger, zerolog.ErrorLevel, "site.get").Str("site", name).Err(err).Msg("failed to deliver password")
}

func (a *App) setStatus(msg string) {
	a.status.SetText(msg)
}

type siteItem struct {
	name, notes string
}

func siteItems(sites novault.Sites) []siteItem {
	names := sites.Names()
	items := make([]siteItem, 0, len(names))
	for _, name := range names {
		items = append(items, siteItem{name: name, notes: sites[name].Notes})
	}
	return items
}

func statusFor(name string, err error) string {
	var mismatch *session.MismatchError
	switch {
	case err == nil:
		return fmt.Sprintf("[green]Password for %s delivered[-]", tview.Escape(name))
	case errors.As(err, &mismatch):
		return fmt.Sprintf("[red]Wrong session password[-], %d attempt(s) remaining", mismatch.Remaining)
	case errors.Is(err, session.ErrSessionExpired):
		return "[red]Session expired[-], restart 'novault loop'"
	case errors.Is(err, novault.ErrCheckFailed):
		return "[red]Master secret no longer matches the stored checkhash[-]"
	default:
		return fmt.Sprintf("[red]Error:[-] %s", tview.Escape(err.Error()))
	}
}

func center(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
