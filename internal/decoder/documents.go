package decoder

import "github.com/ralt/rpmexplorer/internal/models"

// Element layouts of the XML artifacts. Values not found are either
// defaulted (optional) or reported as missing.

var primaryPackageFields = []fieldSpec{
	str("pkgId", "checksum", ""),
	str("name", "name", ""),
	str("arch", "arch", ""),
	str("version", "version", "ver"),
	integer("epoch", "version", "epoch"),
	str("release", "version", "rel"),
	str("summary", "summary", ""),
	str("description", "description", ""),
	str("url", "url", ""),
	integer("time_file", "time", "file"),
	integer("time_build", "time", "build"),
	str("rpm_license", "format/license", ""),
	str("rpm_vendor", "format/vendor", ""),
	str("rpm_group", "format/group", ""),
	str("rpm_buildhost", "format/buildhost", ""),
	str("rpm_sourcerpm", "format/sourcerpm", ""),
	integer("rpm_header_start", "format/header-range", "start"),
	integer("rpm_header_end", "format/header-range", "end"),
	str("rpm_packager", "packager", ""),
	integer("size_package", "size", "package"),
	integer("size_installed", "size", "installed"),
	integer("size_archive", "size", "archive"),
	str("location_href", "location", "href"),
	str("location_base", "location", "base").withDefault(nil),
	str("checksum_type", "checksum", "type"),
}

func relationEntry(extra ...fieldSpec) listSpec {
	fields := []fieldSpec{
		str("name", "", "name"),
		str("flags", "", "flags").withDefault(nil),
		integer("epoch", "", "epoch").withDefault(nil),
		str("version", "", "ver").withDefault(nil),
		str("release", "", "rel").withDefault(nil),
	}
	return listSpec{element: "entry", fields: append(fields, extra...)}
}

func primaryNested() []nestedSpec {
	var out []nestedSpec
	for _, kind := range models.RelationKinds {
		entry := relationEntry()
		if kind == models.KindRequires {
			entry = relationEntry(boolean("pre", "", "pre").withDefault(false))
		}
		out = append(out, nestedSpec{kind: kind, path: "format/" + kind.String(), list: entry})
	}
	return append(out, nestedSpec{
		kind: models.KindFiles,
		path: "format",
		list: listSpec{element: "file", fields: []fieldSpec{
			str("name", "", ""),
			str("type", "", "type").withDefault(models.FileTypeFile).normalized(models.NormalizeFileType),
		}},
	})
}

var primaryDocument = documentSpec{
	root: "metadata",
	records: []recordSpec{{
		element: "package",
		kind:    models.KindPackages,
		fields:  primaryPackageFields,
		key:     &primaryPackageFields[0],
		nested:  primaryNested(),
	}},
}

var pkgidAttr = str("pkgId", "", "pkgid")

var filelistsDocument = documentSpec{
	root: "filelists",
	records: []recordSpec{{
		element: "package",
		key:     &pkgidAttr,
		nested: []nestedSpec{{
			kind: models.KindFileList,
			list: listSpec{element: "file", fields: []fieldSpec{
				str("filename", "", ""),
				str("filetype", "", "type").withDefault(models.FileTypeFile).normalized(models.NormalizeFileType),
			}},
		}},
	}},
}

var otherDocument = documentSpec{
	root: "otherdata",
	records: []recordSpec{{
		element: "package",
		key:     &pkgidAttr,
		nested: []nestedSpec{{
			kind: models.KindChangelog,
			list: listSpec{element: "changelog", fields: []fieldSpec{
				str("author", "", "author").withDefault(nil),
				integer("date", "", "date"),
				str("changelog", "", ""),
			}},
		}},
	}},
}

var updateinfoDocument = documentSpec{
	root: "updates",
	records: []recordSpec{{
		element: "update",
		kind:    models.KindUpdate,
		fields: []fieldSpec{
			str("id", "id", ""),
			str("from", "", "from"),
			str("status", "", "status"),
			str("type", "", "type"),
			str("version", "", "version"),
			str("title", "title", ""),
			str("issued_date", "issued", "date"),
			str("updated_date", "updated", "date").withDefault(nil),
			str("rights", "rights", "").withDefault(nil),
			str("release", "release", "").withDefault(nil),
			integer("pushcount", "pushcount", "").withDefault(nil),
			str("severity", "severity", "").withDefault(nil),
			str("summary", "summary", "").withDefault(nil),
			str("description", "description", "").withDefault(nil),
			records("references", "references", "reference",
				str("href", "", "href"),
				str("id", "", "id").withDefault(""),
				str("type", "", "type"),
				str("title", "", "title").withDefault(""),
			).withDefault([]models.Record{}),
			records("collections", "pkglist", "collection",
				str("short", "", "short").withDefault(""),
				str("name", "name", "").withDefault(""),
				records("packages", "", "package",
					str("name", "", "name"),
					str("version", "", "version"),
					str("release", "", "release"),
					integer("epoch", "", "epoch").withDefault(int64(0)),
					str("arch", "", "arch"),
					str("src", "", "src").withDefault(""),
					str("filename", "filename", ""),
					str("sum_type", "sum", "type").withDefault(""),
					str("sum", "sum", "").withDefault(""),
				),
			).withDefault([]models.Record{}),
		},
	}},
}

func localized(name string) fieldSpec {
	return records(name, "", name,
		str("lang", "", "lang").withDefault("en"),
		str("content", "", ""),
	)
}

func compsHeader(extra ...fieldSpec) []fieldSpec {
	fields := []fieldSpec{
		str("id", "id", ""),
		localized("name"),
		localized("description"),
	}
	return append(fields, extra...)
}

var compsDocument = documentSpec{
	root: "comps",
	records: []recordSpec{
		{
			element: "group",
			kind:    models.KindGroup,
			fields: compsHeader(
				boolean("default", "default", "").withDefault(false),
				boolean("uservisible", "uservisible", "").withDefault(true),
				records("packages", "packagelist", "packagereq",
					str("type", "", "type").withDefault("default"),
					str("package_name", "", ""),
				).withDefault([]models.Record{}),
			),
		},
		{
			element: "category",
			kind:    models.KindCategory,
			fields: compsHeader(
				integer("display_order", "display_order", "").withDefault(nil),
				stringList("groups", "grouplist", "groupid").withDefault([]string{}),
			),
		},
		{
			element: "environment",
			kind:    models.KindEnvironment,
			fields: compsHeader(
				integer("display_order", "display_order", "").withDefault(nil),
				stringList("groups", "grouplist", "groupid").withDefault([]string{}),
				stringList("options", "optionlist", "groupid").withDefault([]string{}),
			),
		},
	},
}
