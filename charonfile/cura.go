package charonfile

import (
	"github.com/Ultimaker/libCharon/opc"
	"github.com/Ultimaker/libCharon/vpath"
)

// curaAliases follows spec.md §4.1's stated alias list for Cura packages
// rather than original_source/Charon/filetypes/CuraPackage.py's own
// __mime_type_destination_pattern_dictionary (which maps "/machines" instead
// of "/definitions" to "/files/resources/machines"). Where the two disagree,
// the specification is treated as authoritative; see DESIGN.md.
var curaAliases = vpath.AliasSet{
	{Pattern: "/materials", Replacement: "/files/resources/materials"},
	{Pattern: "/qualities", Replacement: "/files/resources/qualities"},
	{Pattern: "/definitions", Replacement: "/files/resources/definitions"},
	{Pattern: "/plugins", Replacement: "/files/plugins"},
}

// CuraPackageFamily returns the [opc.Family] for a Cura package (.curapackage),
// Ultimaker Cura's plugin/profile distribution format.
func CuraPackageFamily() opc.Family {
	return opc.Family{
		MimeType:             "application/x-curapackage",
		GlobalMetadataFile:   "/Metadata/package.json",
		MetadataRelationType: "http://schemas.ultimaker.org/package/2018/relationships/curapackage_metadata",
		Aliases:              curaAliases.Compile(),
	}
}
