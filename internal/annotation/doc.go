// Package annotation reads, rewrites and writes labelme-style annotation
// files for pathway diagrams.
//
// # File Format
//
// An annotation file is a JSON object with a "shapes" array and an
// "imagePath" pointing at the diagram, relative to the image directory:
//
//	{
//	  "imagePath": "hsa04010.png",
//	  "shapes": [
//	    {"label": "3:activate:12", "points": [[95, 95], [105, 105]], "shape_type": "rectangle"},
//	    {"label": "4:activate_relation:12", "points": [...], "shape_type": "polygon"}
//	  ]
//	}
//
// A label has the form "<index>:<category>[:<link>]". The index is the
// shape's identity key within the file, the category names what the shape
// marks, and the optional link ties an arrow to its relation box. A label
// holding a bare category is accepted too; such shapes get a positional key
// "#<ordinal>" when the file is loaded.
//
// Keys this package does not interpret ("group_id", "flags", "component",
// "version", ...) are kept and written back unchanged.
//
// # Rewriting
//
// Rewrite turns matched activate arrows into inhibit shapes and carries the
// change over to their linked relations. OrderLike restores the original
// shape sequence after shapes have been regrouped by category.
package annotation
