package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/campusorient/discovery-sync/internal/domain/model"
	"github.com/campusorient/discovery-sync/internal/searchstate"
	"github.com/campusorient/discovery-sync/internal/services"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func runLogin(app *appContext, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := app.Auth.Login(app.Ctx, *email, *password)
	if err != nil {
		return err
	}
	return printJSON(user)
}

func runRegister(app *appContext, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	confirm := fs.String("confirm", "", "password confirmation (defaults to -password)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *confirm == "" {
		*confirm = *password
	}

	user, err := app.Auth.Register(app.Ctx, *name, *email, *password, *confirm)
	if err != nil {
		return err
	}
	return printJSON(user)
}

func runLogout(app *appContext, _ []string) error {
	if err := app.Auth.Logout(app.Ctx); err != nil {
		return err
	}
	fmt.Println("logged out")
	return nil
}

func runWhoami(app *appContext, _ []string) error {
	s := app.Sessions.Get(app.Ctx)
	if s == nil {
		fmt.Println("not logged in")
		return nil
	}
	return printJSON(s.User)
}

func runUniversities(app *appContext, args []string) error {
	fs := flag.NewFlagSet("universities", flag.ContinueOnError)
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", model.DefaultPageSize, "page size")
	search := fs.String("search", "", "free-text filter")
	uniType := fs.String("type", "", "university type (public, private)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	out, err := app.Universities.List(app.Ctx, services.ListParams{
		Page:   *page,
		Limit:  *limit,
		Search: *search,
		Type:   *uniType,
	})
	if err != nil {
		return err
	}
	return printJSON(out)
}

func runUniversity(app *appContext, args []string) error {
	fs := flag.NewFlagSet("university", flag.ContinueOnError)
	id := fs.Int64("id", 0, "university id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	out, err := app.Universities.GetByID(app.Ctx, *id)
	if err != nil {
		return err
	}
	return printJSON(out)
}

func runPrograms(app *appContext, args []string) error {
	fs := flag.NewFlagSet("programs", flag.ContinueOnError)
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", model.DefaultPageSize, "page size")
	search := fs.String("search", "", "free-text filter")
	level := fs.String("level", "", "degree level (licence, master)")
	language := fs.String("language", "", "teaching language")
	university := fs.Int64("university", 0, "university id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	out, err := app.Programs.List(app.Ctx, services.ListParams{
		Page:       *page,
		Limit:      *limit,
		Search:     *search,
		Level:      *level,
		University: *university,
		Language:   *language,
	})
	if err != nil {
		return err
	}
	return printJSON(out)
}

func runProgram(app *appContext, args []string) error {
	fs := flag.NewFlagSet("program", flag.ContinueOnError)
	id := fs.Int64("id", 0, "program id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	out, err := app.Programs.GetByID(app.Ctx, *id)
	if err != nil {
		return err
	}
	return printJSON(out)
}

func runSearch(app *appContext, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	term := fs.String("q", "", "free-text term")
	location := fs.String("location", "", "university location")
	level := fs.String("level", "", "degree level")
	language := fs.String("language", "", "teaching language")
	tuitionMin := fs.Int("tuition-min", -1, "minimum tuition")
	tuitionMax := fs.Int("tuition-max", -1, "maximum tuition")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filters := model.SearchFilters{
		Query:       *term,
		Location:    *location,
		DegreeLevel: *level,
		Language:    *language,
	}
	if *tuitionMin >= 0 {
		filters.TuitionMin = tuitionMin
	}
	if *tuitionMax >= 0 {
		filters.TuitionMax = tuitionMax
	}

	res, err := app.Searcher.Search(app.Ctx, model.SearchQuery{
		Filters: filters,
		Page:    *page,
		Limit:   model.DefaultPageSize,
	})
	if err != nil {
		return err
	}
	return printJSON(res)
}

// runBrowse is an interactive search session. Each mutation dispatches
// through the state machine, so a slow response superseded by a newer
// command is never printed.
func runBrowse(app *appContext, _ []string) error {
	var m *searchstate.Machine
	m = app.newSearchMachine(searchstate.WithOnResults(func(res model.SearchResults, err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "search failed: %v\n", err)
			return
		}
		fmt.Printf("%d universities, %d programs (%s)\n",
			len(res.Universities), len(res.Programs), m.Snapshot().Encode())
	}))

	fmt.Println(`Commands: search <term> | filter <key> <value> | page <n> | refresh | show | quit`)
	fmt.Println("Filter keys:",
		searchstate.FilterLocation, searchstate.FilterDegreeLevel,
		searchstate.FilterLanguage, searchstate.FilterTuitionMin,
		searchstate.FilterTuitionMax)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return nil
		case "search":
			m.SubmitSearch(app.Ctx, strings.Join(fields[1:], " "))
		case "filter":
			if len(fields) < 2 {
				fmt.Fprintln(os.Stderr, "usage: filter <key> [value]")
				continue
			}
			value := ""
			if len(fields) > 2 {
				value = strings.Join(fields[2:], " ")
			}
			if err := m.SetFilter(app.Ctx, fields[1], value); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		case "page":
			if len(fields) != 2 {
				fmt.Fprintln(os.Stderr, "usage: page <n>")
				continue
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			m.SetPage(app.Ctx, n)
		case "refresh":
			m.Refresh(app.Ctx)
		case "show":
			res, err := m.Results()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			if err := printJSON(res); err != nil {
				return err
			}
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n", fields[0])
		}
	}
}

func runProfile(app *appContext, _ []string) error {
	user, err := app.Profiles.Fetch(app.Ctx)
	if err != nil {
		return err
	}
	return printJSON(user)
}

func runUpdateProfile(app *appContext, args []string) error {
	fs := flag.NewFlagSet("update-profile", flag.ContinueOnError)
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	phone := fs.String("phone", "", "phone number")
	address := fs.String("address", "", "postal address")
	bio := fs.String("bio", "", "short bio")
	education := fs.String("education-level", "", "current education level")
	institution := fs.String("institution", "", "current institution")
	if err := fs.Parse(args); err != nil {
		return err
	}

	patch := model.ProfilePatch{}
	if *firstName != "" {
		patch.FirstName = firstName
	}
	if *lastName != "" {
		patch.LastName = lastName
	}

	sub := model.ProfileFieldsPatch{}
	subSet := false
	if *phone != "" {
		sub.Phone, subSet = phone, true
	}
	if *address != "" {
		sub.Address, subSet = address, true
	}
	if *bio != "" {
		sub.Bio, subSet = bio, true
	}
	if *education != "" {
		sub.EducationLevel, subSet = education, true
	}
	if *institution != "" {
		sub.CurrentInstitution, subSet = institution, true
	}
	if subSet {
		patch.Profile = &sub
	}

	if patch.FirstName == nil && patch.LastName == nil && patch.Profile == nil {
		return errors.New("nothing to update: pass at least one field flag")
	}

	user, err := app.Profiles.Update(app.Ctx, patch)
	if err != nil {
		return err
	}
	return printJSON(user)
}

func runSaveProgram(app *appContext, args []string) error {
	return runSavedListChange(app, args, "save-program", app.Profiles.SaveProgram)
}

func runUnsaveProgram(app *appContext, args []string) error {
	return runSavedListChange(app, args, "unsave-program", app.Profiles.RemoveSavedProgram)
}

func runSaveUniversity(app *appContext, args []string) error {
	return runSavedListChange(app, args, "save-university", app.Profiles.SaveUniversity)
}

func runUnsaveUniversity(app *appContext, args []string) error {
	return runSavedListChange(app, args, "unsave-university", app.Profiles.RemoveSavedUniversity)
}

func runSavedListChange(app *appContext, args []string, name string, change func(ctx context.Context, id int64) (*model.User, error)) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	id := fs.Int64("id", 0, "catalog id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := change(app.Ctx, *id)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"saved_programs":     user.SavedPrograms,
		"saved_universities": user.SavedUniversities,
	})
}

func runUploadTranscript(app *appContext, args []string) error {
	fs := flag.NewFlagSet("upload-transcript", flag.ContinueOnError)
	path := fs.String("file", "", "path of the file to upload")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("-file is required")
	}

	f, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	desc, err := app.Profiles.UploadFile(app.Ctx, filepath.Base(*path), f)
	if err != nil {
		return err
	}
	return printJSON(desc)
}

func runDeleteTranscript(app *appContext, args []string) error {
	fs := flag.NewFlagSet("delete-transcript", flag.ContinueOnError)
	fileURL := fs.String("url", "", "stored file url")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *fileURL == "" {
		return errors.New("-url is required")
	}

	if err := app.Profiles.DeleteFile(app.Ctx, *fileURL); err != nil {
		return err
	}
	fmt.Println("deleted")
	return nil
}

func runOrientationQuestions(app *appContext, _ []string) error {
	return printJSON(app.Orientation.Questions())
}

func runOrientationTest(app *appContext, args []string) error {
	fs := flag.NewFlagSet("orientation-test", flag.ContinueOnError)
	answersJSON := fs.String("answers", "", `answers as JSON, e.g. [{"question_id":1,"answer":"Sciences et technologies"}]`)
	if err := fs.Parse(args); err != nil {
		return err
	}

	var answers []model.Answer
	if *answersJSON != "" {
		if err := json.Unmarshal([]byte(*answersJSON), &answers); err != nil {
			return fmt.Errorf("parse -answers: %w", err)
		}
	}

	rec, err := app.Orientation.SubmitAnswers(app.Ctx, answers)
	if err != nil {
		return err
	}
	return printJSON(rec)
}
