package imagery

// Product identifies one of the supported imagery layers.
type Product string

const (
	ProductInfrared        Product = "infrared"
	ProductVisible         Product = "visible"
	ProductGeoColor        Product = "geocolor"
	ProductWaterVapor      Product = "wv"
	ProductWaterVaporNight Product = "wv_night"
)

// Descriptor describes how a product is requested and presented.
type Descriptor struct {
	Product Product `json:"product"`
	// Layer is the remote layer name sent as LAYERS.
	Layer string `json:"layer"`
	// Title is drawn above the rendered figure.
	Title string `json:"title"`
	// ReturnsRawData marks products whose pipeline also hands back the
	// composited raster alongside the figure.
	ReturnsRawData bool `json:"returnsRawData"`
}

// catalog is ordered for stable listings.
var catalog = []Descriptor{
	{
		Product: ProductInfrared,
		Layer:   "GOES-East_ABI_Band13_Clean_Infrared",
		Title:   "GOES EAST Clean Infrared",
	},
	{
		Product: ProductVisible,
		Layer:   "GOES-East_ABI_Band2_Red_Visible_1km",
		Title:   "GOES EAST Red Visible 1km",
	},
	{
		Product: ProductGeoColor,
		Layer:   "GOES-East_ABI_GeoColor",
		Title:   "GOES EAST True color (day) Multispecral (night)",
	},
	{
		Product:        ProductWaterVapor,
		Layer:          "AMSRU2_Columnar_Water_Vapor_Day",
		Title:          "AMSR2 Columnar water vapor (day)",
		ReturnsRawData: true,
	},
	{
		Product:        ProductWaterVaporNight,
		Layer:          "AMSRU2_Columnar_Water_Vapor_Night",
		Title:          "AMSR2 Columnar water vapor (night)",
		ReturnsRawData: true,
	},
}

// Lookup returns the descriptor for p.
func Lookup(p Product) (Descriptor, error) {
	for _, d := range catalog {
		if d.Product == p {
			return d, nil
		}
	}
	return Descriptor{}, &UnknownProductError{Key: string(p)}
}

// ParseProduct validates a product key.
func ParseProduct(key string) (Product, error) {
	d, err := Lookup(Product(key))
	if err != nil {
		return "", err
	}
	return d.Product, nil
}

// Products returns a copy of the catalog.
func Products() []Descriptor {
	out := make([]Descriptor, len(catalog))
	copy(out, catalog)
	return out
}

func (p Product) String() string {
	return string(p)
}
