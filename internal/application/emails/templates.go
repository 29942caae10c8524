package emails

import "fmt"

const (
	siteURL      = "https://sunshare.energy/"
	supportEmail = "support@sunshare.energy"
)

func welcomeContent(userName string) string {
	return fmt.Sprintf(`
    <h1>Welcome to SunShare, %s!</h1>
    <p>Your account is ready. You can now browse community solar projects near you and reserve a share of their capacity.</p>
    <center>
      <a href="%sprojects" class="brand-button">Browse projects</a>
    </center>
    <p style="margin-top: 20px; font-size: 14px; color: #666;">
      If you did not sign up for this account, please contact our support team immediately.
    </p>
    <p>The SunShare Team</p>
`, EscapeHTML(userName), siteURL)
}

func accountUpdatedContent(userName string) string {
	return fmt.Sprintf(`
    <h1>Account details updated</h1>
    <p>Hi %s,</p>
    <p>The information on your <strong>SunShare</strong> account was just updated.</p>
    <center>
      <a href="%saccount" class="brand-button">View your account</a>
    </center>
    <p><strong>Security notice:</strong><br>
    If you did not make this change, please <a href="mailto:%s">contact support</a> right away.</p>
    <p>The SunShare Team</p>
`, EscapeHTML(userName), siteURL, supportEmail)
}

func waitlistContent(userName string) string {
	return fmt.Sprintf(`
    <h1>You're on the list, %s</h1>
    <p>Thanks for your interest in SunShare. We'll reach out as soon as a project opens up in your state.</p>
    <p>The SunShare Team</p>
`, EscapeHTML(userName))
}

func reservationContent(userName string, d ReservationDetails) string {
	return fmt.Sprintf(`
    <h1>Reservation confirmed</h1>
    <p>Hi %s,</p>
    <p>You have reserved <strong>%.2f kW</strong> at <strong>%s</strong>.</p>
    <h2>What to expect</h2>
    <p>Estimated monthly savings: <strong>&#8377;%.0f</strong><br>
    Reservation fee: <strong>&#8377;%.0f</strong></p>
    <center>
      <a href="%sdashboard" class="brand-button">Go to your dashboard</a>
    </center>
    <p>The SunShare Team</p>
`, EscapeHTML(userName), d.Kw, EscapeHTML(d.ProjectName), d.MonthlySavings, d.ReservationFee, siteURL)
}
