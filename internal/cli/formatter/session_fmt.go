package formatter

import (
	"strings"
	"time"

	"github.com/alexanderramin/hrdesk/internal/auth"
)

// FormatSession renders the stored session for whoami.
func FormatSession(st auth.State, now time.Time) string {
	if !st.LoggedIn {
		return Dim("Not logged in. Run 'hrdesk login'.")
	}
	lines := [][2]string{
		{"User", displayOr(st.UserID)},
		{"Email", displayOr(st.Claims.Email)},
		{"Name", displayOr(st.Claims.Name)},
		{"Role", displayOr(st.Claims.Role)},
		{"Tenant", displayOr(st.Claims.TenantID)},
	}
	switch {
	case st.ClaimsErr != nil:
		lines = append(lines, [2]string{"Token", StyleYellow.Render("opaque (claims unreadable)")})
	case st.Claims.ExpiresAt.IsZero():
		lines = append(lines, [2]string{"Expires", Dim("never")})
	case st.Claims.Expired(now):
		lines = append(lines, [2]string{"Expires", StyleRed.Render("expired " + st.Claims.ExpiresAt.Local().Format(time.RFC822))})
	default:
		lines = append(lines, [2]string{"Expires", st.Claims.ExpiresAt.Local().Format(time.RFC822)})
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(StyleBlue.Render(PadRight(l[0], 8)) + "  " + l[1] + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
