package classify

// Platform domain tables used to classify a business's listed website. These
// are hostname-containment matches: "m.facebook.com" matches "facebook.com".
// Kept as package-level tables so they can be unit-tested and extended
// without touching classification logic.

// facebookDomains identify Facebook-hosted pages.
var facebookDomains = []string{
	"facebook.com",
	"fb.com",
	"fb.me",
}

// yelpDomains identify Yelp listings.
var yelpDomains = []string{
	"yelp.com",
	"yelp.ca",
}

// instagramDomains identify Instagram profiles. Only used for social profile
// extraction; an Instagram-only web presence classifies as "other".
var instagramDomains = []string{
	"instagram.com",
	"instagr.am",
}

// platformDomains are third-party platforms that host business listings or
// sites the business does not own: review sites, directories, site builders,
// and delivery platforms. A website on any of these is classified "other".
var platformDomains = []string{
	// Social and review platforms.
	"instagram.com",
	"instagr.am",
	"twitter.com",
	"x.com",
	"linkedin.com",
	"tripadvisor.com",
	"foursquare.com",
	"nextdoor.com",
	"bbb.org",
	// Directories.
	"yellowpages.com",
	"superpages.com",
	"manta.com",
	"mapquest.com",
	"angi.com",
	"thumbtack.com",
	"houzz.com",
	"zomato.com",
	"allmenus.com",
	"restaurantji.com",
	// Site builders and hosted storefronts.
	"sites.google.com",
	"business.site",
	"wixsite.com",
	"weebly.com",
	"wordpress.com",
	"blogspot.com",
	"godaddysites.com",
	"square.site",
	"squarespace.com",
	// Delivery and booking platforms.
	"doordash.com",
	"grubhub.com",
	"ubereats.com",
	"seamless.com",
	"postmates.com",
	"opentable.com",
	"toasttab.com",
	"menufy.com",
	"clover.com",
}
