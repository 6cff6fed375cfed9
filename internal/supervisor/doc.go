// Package supervisor starts the Tor Browser bundle and tears down the
// processes it leaves behind.
//
// Start launches the bundle's firefox.exe and polls the native window list
// until a window titled like "About Tor ... Tor Browser" appears, minimizing
// every match. KillRelated finds every process whose executable belongs to
// the browser toolchain (firefox, geckodriver, java, ...) and asks it to
// terminate, waiting a grace period before asking survivors once more.
//
// Window inspection only exists on Windows. Elsewhere the window system
// reports ErrUnsupportedPlatform and Start relies on the ready probe given
// with WithReadyProbe.
package supervisor
