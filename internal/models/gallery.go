package models

import "strings"

const GalleryPlaceholder = "https://via.placeholder.com/800x600?text=No+Image"

type GalleryLayout string

const (
	LayoutSingle       GalleryLayout = "single"
	LayoutSplit        GalleryLayout = "split"
	LayoutFeatureTwo   GalleryLayout = "feature_two"
	LayoutFeatureThree GalleryLayout = "feature_three"
	LayoutGrid         GalleryLayout = "grid_five"

	galleryVisible = 5
)

type Gallery struct {
	Layout  GalleryLayout `json:"layout"`
	Images  []string      `json:"images"`
	Visible []string      `json:"visible"`
	HasMore bool          `json:"has_more"`
}

// BuildGallery puts the cover first, drops blanks and duplicates, and picks a
// layout from the number of photos left.
func BuildGallery(cover string, images []string) Gallery {
	seen := make(map[string]struct{}, len(images)+1)
	out := make([]string, 0, len(images)+1)
	add := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" {
			return
		}
		if _, dup := seen[u]; dup {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}

	add(cover)
	for _, img := range images {
		add(img)
	}
	if len(out) == 0 {
		out = append(out, GalleryPlaceholder)
	}

	g := Gallery{Images: out, Layout: layoutFor(len(out))}
	if len(out) > galleryVisible {
		g.Visible = out[:galleryVisible]
		g.HasMore = true
	} else {
		g.Visible = out
	}
	return g
}

func layoutFor(n int) GalleryLayout {
	switch n {
	case 1:
		return LayoutSingle
	case 2:
		return LayoutSplit
	case 3:
		return LayoutFeatureTwo
	case 4:
		return LayoutFeatureThree
	default:
		return LayoutGrid
	}
}
