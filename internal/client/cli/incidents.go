package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/ireporter/internal/client/client"
	"github.com/dmitrijs2005/ireporter/internal/client/guard"
	"github.com/dmitrijs2005/ireporter/internal/client/media"
	"github.com/dmitrijs2005/ireporter/internal/client/models"
	"github.com/dmitrijs2005/ireporter/internal/client/services"
	"github.com/dmitrijs2005/ireporter/internal/client/views"
)

func (a *App) Dashboard(ctx context.Context) error {
	a.navigate(ctx, guard.PathDashboard)
	return nil
}

// List opens the incident list, optionally narrowed by a type or status.
func (a *App) List(ctx context.Context, args []string) error {
	f, err := views.ParseFilter(strings.Join(args, " "))
	if err != nil {
		return a.fail(fmt.Sprintf("Unknown filter. Use one of: %s", filterNames()))
	}
	a.mu.Lock()
	a.filter = f
	a.mu.Unlock()
	a.navigate(ctx, guard.PathIncidents)
	return nil
}

func filterNames() string {
	names := make([]string, len(views.Filters))
	for i, f := range views.Filters {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: show <incident id>")
		return nil
	}
	a.navigate(ctx, guard.IncidentPath(args[0]))
	return nil
}

func (a *App) Create(ctx context.Context) error {
	a.navigate(ctx, guard.PathCreateIncident)
	return nil
}

func (a *App) Edit(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: edit <incident id>")
		return nil
	}
	a.navigate(ctx, guard.EditIncidentPath(args[0]))
	return nil
}

// Download saves the attachment of an incident into the downloads folder.
func (a *App) Download(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: download <incident id>")
		return nil
	}
	out := views.LoadDetail(ctx, a.incidents, models.ID(args[0]))
	if out.Redirect != "" {
		return a.fail(out.Notice)
	}
	if out.Incident.MediaURL == "" {
		return a.fail("This incident has no attachment")
	}

	dst, err := media.Download(ctx, a.download, out.Incident.MediaURL, a.downloads)
	if err != nil {
		a.log.Warn(ctx, "attachment download failed", "id", args[0], "error", err)
		return a.fail("Failed to download attachment")
	}
	a.notices.Success("Attachment saved to " + dst)
	return nil
}

// Report opens the anonymous report form.
func (a *App) Report(ctx context.Context) error {
	return a.navigate(ctx, guard.PathReport)
}

// Delete removes an incident after confirmation. Owners and admins only.
func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: delete <incident id>")
		return nil
	}
	if !a.tokenPresent(ctx) {
		a.navigate(ctx, guard.PathLogin)
		return nil
	}

	out := views.LoadDetail(ctx, a.incidents, models.ID(args[0]))
	if a.follow(ctx, out) {
		return nil
	}
	if !views.RowActions(*out.Incident, a.session).Delete {
		return a.fail("You can only delete your own incidents")
	}

	ok, err := Confirm(a.reader, "Are you sure you want to delete this incident?", a.out)
	if err != nil || !ok {
		return err
	}

	if err := a.incidents.Delete(ctx, out.Incident.ID); err != nil {
		return a.fail(services.Message(err, "Failed to delete incident"))
	}
	a.notices.Success("Incident deleted successfully")
	a.navigate(ctx, guard.PathIncidents)
	return nil
}

// Status moves an incident to a new workflow status. Admins only.
func (a *App) Status(ctx context.Context, args []string) error {
	if len(args) < 2 {
		a.println("Usage: status <incident id> <pending|investigating|resolved|rejected>")
		return nil
	}
	if !a.session.IsAdmin() {
		return a.fail(views.NoticeAdminRequired)
	}

	if _, err := a.incidents.ChangeStatus(ctx, models.ID(args[0]), args[1]); err != nil {
		return a.fail(services.Message(err, "Failed to update status"))
	}
	a.notices.Success("Status updated successfully")
	a.navigate(ctx, guard.IncidentPath(args[0]))
	return nil
}

func (a *App) showDashboard(ctx context.Context) error {
	sum, err := views.LoadDashboard(ctx, a.incidents)
	if err != nil {
		a.notices.Error(views.NoticeLoadDashboard)
	}
	a.println(sum.Render(a.session.User(), a.now()))
	return err
}

func (a *App) showList(ctx context.Context) error {
	list, err := views.LoadIncidentList(ctx, a.incidents, a.session)
	if err != nil {
		a.notices.Error(views.NoticeLoadIncidents)
		return err
	}
	a.mu.Lock()
	f := a.filter
	a.mu.Unlock()
	a.println(views.RenderList(list, f, a.now()))
	return nil
}

func (a *App) showDetail(ctx context.Context, id models.ID) error {
	out := views.LoadDetail(ctx, a.incidents, id)
	if a.follow(ctx, out) {
		return nil
	}
	a.println(views.RenderDetail(*out.Incident, views.RowActions(*out.Incident, a.session), a.now()))
	return nil
}

// createForm collects a new report. The category list depends on the
// chosen type.
func (a *App) createForm(ctx context.Context) error {
	d := views.NewDraft()
	var err error

	if d.Title, err = getSimpleText(a.reader, "Title", a.out); err != nil {
		return err
	}
	if d.Description, err = GetMultiline(a.reader, "Description", a.out); err != nil {
		return err
	}
	if err := a.askType(d); err != nil {
		return err
	}
	if err := a.askCategory(d); err != nil {
		return err
	}
	if d.Location, err = getSimpleText(a.reader, "Location", a.out); err != nil {
		return err
	}
	if err := a.askAttachment(ctx, d); err != nil {
		return err
	}

	if _, err := a.incidents.Create(ctx, d.IncidentForm); err != nil {
		return a.fail(services.Message(err, "Failed to report incident"))
	}
	a.notices.Success("Incident reported successfully!")
	a.navigate(ctx, guard.PathIncidents)
	return nil
}

// editForm pre-fills every prompt with the current value.
func (a *App) editForm(ctx context.Context, id models.ID) error {
	out := views.LoadEdit(ctx, a.incidents, a.session, id)
	if a.follow(ctx, out) {
		return nil
	}
	d := &views.Draft{IncidentForm: views.FormFrom(*out.Incident)}
	var err error

	if d.Title, err = getTextOr(a.reader, "Title", d.Title, a.out); err != nil {
		return err
	}
	if d.Description, err = getTextOr(a.reader, "Description", d.Description, a.out); err != nil {
		return err
	}
	if err := a.askType(d); err != nil {
		return err
	}
	if err := a.askCategory(d); err != nil {
		return err
	}
	if d.Location, err = getTextOr(a.reader, "Location", d.Location, a.out); err != nil {
		return err
	}
	if err := a.askAttachment(ctx, d); err != nil {
		return err
	}

	if _, err := a.incidents.Update(ctx, id, d.IncidentForm); err != nil {
		return a.fail(services.Message(err, "Failed to update incident"))
	}
	a.notices.Success("Incident updated successfully!")
	a.navigate(ctx, guard.IncidentPath(id.String()))
	return nil
}

func (a *App) askType(d *views.Draft) error {
	t, err := getTextOr(a.reader, "Type (redflag/intervention)", d.Type, a.out)
	if err != nil {
		return err
	}
	if err := d.SetType(t); err != nil {
		return a.fail("Type must be 'redflag' or 'intervention'")
	}
	return nil
}

func (a *App) askCategory(d *views.Draft) error {
	a.println(views.RenderCategories(models.IncidentType(d.Type)))
	choice, err := getTextOr(a.reader, "Category (number or name, empty to skip)", d.Category, a.out)
	if err != nil {
		return err
	}
	if err := d.SetCategory(choice); err != nil {
		return a.fail(err.Error())
	}
	return nil
}

// askAttachment uploads an optional file when media storage is configured.
func (a *App) askAttachment(ctx context.Context, d *views.Draft) error {
	if a.uploader == nil {
		return nil
	}
	path, err := getSimpleText(a.reader, "Attachment file path (empty to skip)", a.out)
	if err != nil || path == "" {
		return err
	}
	url, err := a.uploader.UploadFile(ctx, path)
	if err != nil {
		a.log.Warn(ctx, "attachment upload failed", "error", err)
		return a.fail("Failed to upload attachment")
	}
	d.MediaURL = url
	return nil
}

// reportForm files an anonymous report. Contact details are optional; a
// follow-up notice explains how to track the report later.
func (a *App) reportForm(ctx context.Context) error {
	a.println(views.RenderTips(guard.PathReport))

	var form services.AnonymousForm
	var err error
	if form.Title, err = getSimpleText(a.reader, "Title", a.out); err != nil {
		return err
	}
	if form.Description, err = GetMultiline(a.reader, "Description", a.out); err != nil {
		return err
	}
	if form.Type, err = getTextOr(a.reader, "Type (redflag/intervention)", string(models.TypeRedFlag), a.out); err != nil {
		return err
	}
	if form.Location, err = getSimpleText(a.reader, "Location", a.out); err != nil {
		return err
	}
	if form.ReporterName, err = getSimpleText(a.reader, "Your name (optional)", a.out); err != nil {
		return err
	}
	if form.ReporterEmail, err = getSimpleText(a.reader, "Your email (optional)", a.out); err != nil {
		return err
	}

	if _, err := a.incidents.ReportAnonymously(ctx, form); err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			return a.fail("Failed to submit report. Please try again.")
		}
		return a.fail(services.Message(err, "Failed to submit report"))
	}

	a.notices.Success("Incident reported successfully! Thank you for your report.")
	a.notices.InfoAfter(anonymousFollowUp, anonymousFollowText)
	return nil
}
