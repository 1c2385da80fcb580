package splint

import "fmt"

// check runs all docstring consistency rules. When the docstring is
// missing entirely no further rules run: they assume a docstring exists
// and would otherwise report misleading findings against empty data.
func (d *FuncDef) check() {
	if d.DocStr.Text == "" {
		d.AddError("Docstring missing")
		return
	}
	d.checkParamsDescribed()
	d.checkParamsAdditional()
	d.checkParamsComplete()
	d.checkReturns()
}

// ignoreFirstParam reports whether the first declared parameter is a
// conventional receiver (self/cls) exempt from documentation.
func (d *FuncDef) ignoreFirstParam() bool {
	return d.isMethod && !d.decorators["staticmethod"]
}

// effectiveParams returns the parameter names that require documentation.
func (d *FuncDef) effectiveParams() []string {
	if d.ignoreFirstParam() && len(d.params) > 0 {
		return d.params[1:]
	}
	return d.params
}

// checkParamsDescribed reports every declared parameter without a
// ":param" annotation.
func (d *FuncDef) checkParamsDescribed() {
	documented := make(map[string]bool, len(d.DocStr.Params))
	for _, p := range d.DocStr.Params {
		documented[p.Name] = true
	}
	for _, name := range d.effectiveParams() {
		if !documented[name] {
			d.AddError(fmt.Sprintf("':param {type} %s: {description}' is missing.", name))
		}
	}
}

// checkParamsAdditional reports every documented parameter that is not in
// the function's signature, in docstring order.
func (d *FuncDef) checkParamsAdditional() {
	declared := make(map[string]bool, len(d.params))
	for _, name := range d.effectiveParams() {
		declared[name] = true
	}
	seen := make(map[string]bool, len(d.DocStr.Params))
	for _, p := range d.DocStr.Params {
		if declared[p.Name] || seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		d.AddError(fmt.Sprintf("Additional ':param %s' in docstring.", p.Name))
	}
}

// checkParamsComplete reports parameter annotations with a missing type
// token (warning) or a missing description (error). The two checks are
// independent and may both fire for the same parameter.
func (d *FuncDef) checkParamsComplete() {
	for _, p := range d.DocStr.Params {
		if p.Type == "" {
			d.AddWarning("No type in docstring for parameter: " + p.Name)
		}
		if p.Description == "" {
			d.AddError("No description in docstring for parameter: " + p.Name)
		}
	}
}

// checkReturns cross-checks ":return:"/":rtype:" annotations against the
// function's actual return behavior.
func (d *FuncDef) checkReturns() {
	// Last occurrence wins when a tag is duplicated.
	returns := make(map[string]string, len(d.DocStr.Returns))
	for _, r := range d.DocStr.Returns {
		returns[r.Tag] = r.Description
	}
	for _, r := range d.DocStr.Returns {
		if r.Description == "" {
			d.AddError(fmt.Sprintf("Description after '%s': missing", r.Tag))
		}
	}
	if d.HasReturn {
		if _, ok := returns["return"]; !ok {
			d.AddError("':return: {description}' is missing.")
		}
		if _, ok := returns["rtype"]; !ok {
			d.AddWarning("':rtype: {description}' is missing.")
		}
	} else if len(returns) > 0 {
		d.AddError("Docstring describes return values but function does not return anything!")
	}
}
