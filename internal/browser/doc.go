// Package browser runs a Firefox session that can be routed through Tor.
//
// A Session composes a Tor source (the Tor Browser bundle started by the
// supervisor, an embedded tornago daemon, or an external SOCKS proxy), the
// browser settings file, and a Driver that automates Firefox. Every driver
// call that can hang is bounded by a timeout:
//
//	sess, err := browser.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer sess.Close(ctx)
//
//	if err := sess.Navigate(ctx, "https://check.torproject.org/"); err != nil {
//	    return err
//	}
//	el, err := sess.ClickButton(ctx, "a.button", 0)
//
// The default Driver is backed by Playwright's Firefox. Firefox
// preferences from the settings file override the generated proxy
// preferences.
package browser
