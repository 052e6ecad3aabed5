package subset

// Attribute and variable names of the WFMD grid layout.
const (
	AttrProductType   = "product_type"
	AttrLatLow        = "lat_low"
	AttrLatHigh       = "lat_high"
	AttrLonLow        = "lon_low"
	AttrLonHigh       = "lon_high"
	AttrLatRes        = "lat_res"
	AttrLonRes        = "lon_res"
	AttrReferenceTime = "reference_time"

	VarLon     = "lon"
	VarLat     = "lat"
	VarDay     = "day"
	VarXCH4    = "xch4"
	VarXCH4Err = "xch4_err"
	VarN       = "N"
)

// FillValue marks cells without a retrieval in written files.
const FillValue float32 = -999

// FillAttrs lists the attributes that may carry a variable's fill value, in
// lookup order.
var FillAttrs = []string{"_FillValue", "missing_value"}
