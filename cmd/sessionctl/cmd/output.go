package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/sessioncache"
)

type stateView struct {
	Status     string     `json:"status"`
	SubjectID  string     `json:"subject_id,omitempty"`
	Email      string     `json:"email,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Error      string     `json:"error,omitempty"`
	Generation uint64     `json:"generation"`
}

func viewOf(st sessioncache.State) stateView {
	v := stateView{Generation: st.Generation}
	switch {
	case st.Loading:
		v.Status = "loading"
	case st.Err != nil:
		v.Status = "error"
		v.Error = st.Err.Error()
	case st.SignedIn():
		v.Status = "signed_in"
		v.SubjectID = st.Session.SubjectID
		v.Email = st.Session.Email
		exp := st.Session.ExpiresAt
		v.ExpiresAt = &exp
	default:
		v.Status = "signed_out"
	}
	return v
}

func printState(w io.Writer, st sessioncache.State, now time.Time, asJSON bool) error {
	v := viewOf(st)
	if asJSON {
		return json.NewEncoder(w).Encode(v)
	}

	var err error
	switch v.Status {
	case "signed_in":
		who := v.Email
		if who == "" {
			who = v.SubjectID
		}
		_, err = fmt.Fprintf(w, "signed in as %s (expires %s, in %s)\n",
			who, v.ExpiresAt.Format(time.RFC3339), v.ExpiresAt.Sub(now).Truncate(time.Second))
	case "error":
		_, err = fmt.Fprintf(w, "error: %s\n", v.Error)
	default:
		_, err = fmt.Fprintln(w, v.Status)
	}
	return err
}
