package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"swipehire/internal/domain/application"
	"swipehire/internal/domain/connection"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func render(w io.Writer, format string, v any) error {
	if format == "json" {
		return writeJSON(w, v)
	}
	switch value := v.(type) {
	case *application.Application:
		writeApplication(w, "", *value)
	case *application.JobBoard:
		writeApplications(w, "applied", value.Applied)
		writeApplications(w, "underProcess", value.UnderProcess)
		writeApplications(w, "hired", value.Hired)
		writeApplications(w, "rejected", value.Rejected)
	case *application.DeveloperBoard:
		writeApplications(w, "applied", value.Applied)
		writeApplications(w, "underProcess", value.UnderProcess)
		writeApplications(w, "hired", value.Hired)
		writeApplications(w, "rejected", value.Rejected)
		writeApplications(w, "onHold", value.OnHold)
	case *connection.Connection:
		fmt.Fprintf(w, "%s <-> %s  %s (requester %s)\n", value.Pair.Low, value.Pair.High, value.State, value.RequesterID)
	case *connection.Board:
		writeViews(w, "connectionRequests", value.ConnectionRequests)
		writeViews(w, "requested", value.Requested)
		writeViews(w, "matched", value.Matched)
	case *removal:
		fmt.Fprintln(w, "removed")
	case nil:
		fmt.Fprintln(w, "no change")
	default:
		return writeJSON(w, v)
	}
	return nil
}

func writeApplications(w io.Writer, label string, items []application.Application) {
	fmt.Fprintf(w, "%s (%d)\n", label, len(items))
	for _, item := range items {
		writeApplication(w, "  ", item)
	}
}

func writeApplication(w io.Writer, indent string, item application.Application) {
	title := item.Job.Title
	if title == "" {
		title = "-"
	}
	fmt.Fprintf(w, "%s%s / %s  %s  %q\n", indent, item.DeveloperID, item.JobID, item.Status, title)
}

func writeViews(w io.Writer, label string, items []connection.View) {
	fmt.Fprintf(w, "%s (%d)\n", label, len(items))
	for _, item := range items {
		fmt.Fprintf(w, "  %s  %s\n", item.CounterpartID, strings.ToLower(string(item.State)))
	}
}
