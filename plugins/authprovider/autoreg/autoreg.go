// Package autoreg loads auth-provider plugins through side-effect imports.
//
// This package is imported once by the composition root so plugin packages can
// self-register providers in init() using the public plugin contract package.
package autoreg

import (
	_ "warden.dev/warden/plugins/authprovider/example"
)
