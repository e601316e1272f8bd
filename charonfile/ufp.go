package charonfile

import (
	"github.com/Ultimaker/libCharon/opc"
	"github.com/Ultimaker/libCharon/vpath"
)

// ufpAliases mirrors original_source/Charon/filetypes/UltimakerFormatPackage.py's
// __mime_type_destination_pattern_dictionary: both "/preview" and its
// "/default" suffix resolve to the embedded thumbnail, both "/toolpath" and
// its "/default" suffix to the embedded G-code model.
var ufpAliases = vpath.AliasSet{
	{Pattern: "/preview/default", Replacement: "/Metadata/thumbnail.png"},
	{Pattern: "/preview", Replacement: "/Metadata/thumbnail.png"},
	{Pattern: "/toolpath/default", Replacement: "/3D/model.gcode"},
	{Pattern: "/toolpath", Replacement: "/3D/model.gcode"},
}

// UFPFamily returns the [opc.Family] for the Ultimaker Format Package, the
// product of record this library was built to read and write.
func UFPFamily() opc.Family {
	return opc.Family{
		MimeType:             "application/x-ufp",
		GlobalMetadataFile:   "/Metadata/UFP_Global.json",
		MetadataRelationType: "http://schemas.ultimaker.org/package/2018/relationships/ufp_metadata",
		Aliases:              ufpAliases.Compile(),
		GCodeFallbackPath:    "/3D/model.gcode",
	}
}
