package site

import (
	"embed"
	"io/fs"
)

//go:embed assets
var embeddedAssets embed.FS

// AssetsFS exposes the static files served under /assets/.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(site.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}
