// Command discovery is the CLI front end of the sync core: it logs in,
// browses the catalog, searches, and edits the profile against a
// configured backend, persisting the session between invocations.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

type commandFn func(app *appContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmdName)
		printUsage()
		os.Exit(2)
	}

	app, err := newAppContext(context.Background(), logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	if err := cmd.run(app, os.Args[2:]); err != nil {
		logger.Error("command failed", "command", cmdName, "error", err)
		os.Exit(1)
	}
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Log in with email and password",
			run:         runLogin,
		},
		"register": {
			name:        "register",
			description: "Create an account and log in",
			run:         runRegister,
		},
		"logout": {
			name:        "logout",
			description: "Clear the stored session",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the current session",
			run:         runWhoami,
		},
		"universities": {
			name:        "universities",
			description: "List universities",
			run:         runUniversities,
		},
		"university": {
			name:        "university",
			description: "Show one university by id",
			run:         runUniversity,
		},
		"programs": {
			name:        "programs",
			description: "List programs",
			run:         runPrograms,
		},
		"program": {
			name:        "program",
			description: "Show one program by id",
			run:         runProgram,
		},
		"search": {
			name:        "search",
			description: "Run a global search with optional filters",
			run:         runSearch,
		},
		"browse": {
			name:        "browse",
			description: "Interactive search session with live filters",
			run:         runBrowse,
		},
		"profile": {
			name:        "profile",
			description: "Show the profile",
			run:         runProfile,
		},
		"update-profile": {
			name:        "update-profile",
			description: "Update profile fields",
			run:         runUpdateProfile,
		},
		"save-program": {
			name:        "save-program",
			description: "Add a program to the saved list",
			run:         runSaveProgram,
		},
		"unsave-program": {
			name:        "unsave-program",
			description: "Remove a program from the saved list",
			run:         runUnsaveProgram,
		},
		"save-university": {
			name:        "save-university",
			description: "Add a university to the saved list",
			run:         runSaveUniversity,
		},
		"unsave-university": {
			name:        "unsave-university",
			description: "Remove a university from the saved list",
			run:         runUnsaveUniversity,
		},
		"upload-transcript": {
			name:        "upload-transcript",
			description: "Upload a transcript file",
			run:         runUploadTranscript,
		},
		"delete-transcript": {
			name:        "delete-transcript",
			description: "Delete a transcript by its URL",
			run:         runDeleteTranscript,
		},
		"orientation": {
			name:        "orientation",
			description: "Show the orientation questionnaire",
			run:         runOrientationQuestions,
		},
		"orientation-test": {
			name:        "orientation-test",
			description: "Submit orientation answers and show recommendations",
			run:         runOrientationTest,
		},
	}
}

func printUsage() {
	fmt.Fprintf(os.Stdout, "Usage: discovery <command> [flags]\n\n")
	fmt.Fprintf(os.Stdout, "Available commands:\n")
	for _, c := range commands() {
		fmt.Fprintf(os.Stdout, "  %-20s %s\n", c.name, c.description)
	}
}
